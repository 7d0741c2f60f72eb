package minio

import (
	"testing"

	"github.com/hupe1980/sketchbin/blobstore"
	"github.com/stretchr/testify/require"
)

var _ blobstore.Store = (*Store)(nil)

func TestKeyPrefixing(t *testing.T) {
	s := NewStore(nil, "bucket", "sketches")
	require.Equal(t, "sketches/round-000000/rank-0000", s.key("round-000000/rank-0000"))

	noPrefix := NewStore(nil, "bucket", "")
	require.Equal(t, "round-000000/rank-0000", noPrefix.key("round-000000/rank-0000"))

	slashed := NewStore(nil, "bucket", "sketches/")
	require.Equal(t, "sketches/a", slashed.key("a"))
}
