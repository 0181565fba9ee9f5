package aggsig

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol reports a precondition violated by the caller or by a
	// peer, such as mismatched nonce points or malformed inputs.
	ErrProtocol = errors.New("aggsig: protocol violation")

	// ErrProof reports a signature or share that fails verification.
	ErrProof = errors.New("aggsig: invalid signature")

	// ErrCommitment reports a revealed nonce point that does not open its
	// commitment. The session must be aborted.
	ErrCommitment = errors.New("aggsig: commitment does not open")

	// ErrNonceReuse reports a second use of an ephemeral key.
	ErrNonceReuse = fmt.Errorf("%w: ephemeral key already used", ErrProtocol)
)

func protocolErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, args...))
}
