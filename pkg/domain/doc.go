/*
Package domain contains the core domain models for the Reel engine.

It defines the fundamental entities of the action-list virtual machine:
Graphs (ordered, addressable lists of nodes plus parameter declarations and
an execution policy), Nodes (single executable steps with routing rules),
typed parameter Values, and the snapshot types used for save/resume.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Graph: an ordered list of Nodes, parameter definitions and a Policy.
  - Node: one executable step; Normal (single edge) or Check (pass/fail edges).
  - Value: a tagged union holding exactly one typed representation.
  - Snapshot: the serializable form of every live execution, for save/resume.
  - GameState: the derived enumeration gating gameplay input elsewhere.
*/
package domain
