package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/torxx666/skob26/service/internal/auth"
)

func TestIssueToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, issueToken(&out, "s3cret", "Alice", time.Hour))

	token := strings.TrimSpace(out.String())
	v := auth.NewVerifier("s3cret")
	assert.NoError(t, v.Authorize(token, "Alice"))
	assert.ErrorIs(t, v.Authorize(token, "Bob"), auth.ErrNameMismatch)
}

func TestIssueTokenNeedsSecret(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, issueToken(&out, "", "Alice", time.Hour))
	assert.Error(t, issueToken(&out, "s3cret", "Alice", 0))
	assert.Empty(t, out.String())
}
