// Package localtransport provides an in-process fan-out transport
// connecting several round.Round instances within the same process. It
// is the reference Transport used by the seed tests and the demo CLI;
// production deployments wire round.Round against a real network
// transport instead.
package localtransport
