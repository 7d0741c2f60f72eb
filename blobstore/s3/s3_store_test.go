package s3

import (
	"testing"

	"github.com/hupe1980/sketchbin/blobstore"
	"github.com/stretchr/testify/require"
)

var _ blobstore.Store = (*Store)(nil)

func TestKeyPrefixing(t *testing.T) {
	s := &Store{bucket: "bucket", prefix: "sketches"}
	require.Equal(t, "sketches/round-000000/rank-0000", s.key("round-000000/rank-0000"))

	noPrefix := &Store{bucket: "bucket"}
	require.Equal(t, "a/b", noPrefix.key("a/b"))

	slashed := &Store{bucket: "bucket", prefix: "sketches/"}
	require.Equal(t, "sketches/a", slashed.key("a"))
}
