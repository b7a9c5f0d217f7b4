package integrity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"landrecords/internal/config"
	"landrecords/internal/model"
)

// DefaultChunkSize is the read buffer used when none is configured.
const DefaultChunkSize = 4096

// Engine computes content digests in fixed-size chunks so arbitrarily large
// uploads are hashed in bounded memory.
type Engine struct {
	chunkSize int
}

// New creates an Engine from configuration.
func New(cfg config.IntegrityConfig) *Engine {
	size := cfg.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Engine{chunkSize: size}
}

// ChunkSize returns the configured read size.
func (e *Engine) ChunkSize() int { return e.chunkSize }

// DigestReader hashes everything r yields and returns the hex digest and byte count.
func (e *Engine) DigestReader(ctx context.Context, r io.Reader) (string, int64, error) {
	return e.Copy(ctx, io.Discard, r)
}

// Copy writes src to dst while hashing it, in a single pass. Cancellation is
// checked between chunks.
func (e *Engine) Copy(ctx context.Context, dst io.Writer, src io.Reader) (string, int64, error) {
	h := sha256.New()
	w := io.MultiWriter(dst, h)
	buf := make([]byte, e.chunkSize)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return "", total, err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return "", total, err
			}
			total += int64(n)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return "", total, readErr
		}
	}
	return hex.EncodeToString(h.Sum(nil)), total, nil
}

// DigestBytes is a convenience for in-memory content.
func DigestBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// MutationDigest binds a terminal decision to the ids it was made on.
// The owner ids are the ones frozen on the mutation, never re-read from the parcel.
func MutationDigest(id, landID, previousOwnerID, newOwnerID uuid.UUID, status model.MutationStatus) string {
	canonical := strings.Join([]string{
		id.String(),
		landID.String(),
		previousOwnerID.String(),
		newOwnerID.String(),
		string(status),
	}, "-")
	return DigestBytes([]byte(canonical))
}

// VerifyMutation recomputes the verification hash of a terminal mutation.
// Pending mutations carry no hash and never verify.
func VerifyMutation(m *model.Mutation) bool {
	if m == nil || !m.Status.IsTerminal() || m.VerificationHash == nil {
		return false
	}
	want := MutationDigest(m.ID, m.LandID, m.PreviousOwnerID, m.NewOwnerID, m.Status)
	return *m.VerificationHash == want
}
