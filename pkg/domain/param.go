package domain

// ParamDef declares a graph parameter: a stable id, a type tag, and the
// default value used when a run supplies no override.
type ParamDef struct {
	ID      string    `json:"id" yaml:"id"`
	Type    ParamType `json:"type" yaml:"type"`
	Default Value     `json:"-" yaml:"-"`
}

// Override is a typed, id-addressed value attached to a single run.
// Overrides are matched by id, never by position.
type Override struct {
	ID    string
	Value Value
}

// Param is one bound parameter slot on a live instance.
type Param struct {
	ID    string
	Type  ParamType
	Value Value
}

// ParamSnapshot is the serializable form of one bound parameter, using the
// canonical string encoding for the value.
type ParamSnapshot struct {
	ID      string    `json:"id"`
	Type    ParamType `json:"type"`
	Encoded string    `json:"value"`
}
