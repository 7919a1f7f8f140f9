package reel

// Version is the library release. Release builds override it via
// -ldflags "-X github.com/reelvm/reel.Version=...".
var Version = "0.3.0"
