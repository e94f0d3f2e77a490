package recovery

// AuthMethod is the sign-in method the user chose.
type AuthMethod string

// Known auth methods.
const (
	// AuthMethodWallet signs in through the secondary wallet provider.
	AuthMethodWallet AuthMethod = "wallet"
	AuthMethodEmail  AuthMethod = "email"
	AuthMethodOAuth  AuthMethod = "oauth"
)

// PrimaryState is the readiness of the primary backend session.
type PrimaryState struct {
	Valid bool
}

// SecondaryState is what the secondary provider reports about itself.
type SecondaryState struct {
	Ready         bool
	Authenticated bool
}

// SecondaryStateOf reads the current flags of p.
func SecondaryStateOf(p SecondaryProvider) SecondaryState {
	return SecondaryState{Ready: p.Ready(), Authenticated: p.Authenticated()}
}

// NeedsRecovery reports whether a silent recovery attempt should start.
//
// It holds when the primary session is valid, the user signed in with
// secondaryMethod, the secondary provider is not ready or not
// authenticated, and no attempt was made yet in this logical session.
func NeedsRecovery(primary PrimaryState, secondary SecondaryState, method, secondaryMethod AuthMethod, attempted bool) bool {
	return primary.Valid &&
		method == secondaryMethod &&
		(!secondary.Ready || !secondary.Authenticated) &&
		!attempted
}
