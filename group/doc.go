// Package group defines the directory abstraction a round uses to resolve
// its ring order and peer verification keys, mirroring the Group/Id
// contract of the original shuffle protocol (GetIndex, GetId, Previous,
// Next, GetKey, with Id::Zero as the ring-end sentinel).
package group
