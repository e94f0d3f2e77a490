// Package bridge implements the subsystem's external collaborators over
// HTTP: the primary backend session client, the secondary identity
// provider, and the JSON client handoffctl uses to reach handoffd.
package bridge
