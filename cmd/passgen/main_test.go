package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/passguard/pkg/password"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newCommand(&out).Run(context.Background(), append([]string{"passgen"}, args...))
	return strings.TrimSpace(out.String()), err
}

func TestRandom(t *testing.T) {
	out, err := run(t, "random", "--length", "16")
	require.NoError(t, err)
	assert.Len(t, out, 16)
}

func TestRandom_LengthOutOfRange(t *testing.T) {
	_, err := run(t, "random", "--length", "4")
	require.Error(t, err)
	assert.ErrorIs(t, err, password.ErrInvalidParameter)
}

func TestDiceware(t *testing.T) {
	out, err := run(t, "diceware", "--count", "4", "--sep", "dash")
	require.NoError(t, err)
	assert.Len(t, strings.Split(out, "-"), 4)
}

func TestDiceware_UnknownSeparator(t *testing.T) {
	_, err := run(t, "diceware", "--sep", "comma")
	assert.ErrorIs(t, err, password.ErrInvalidParameter)
}

func TestImprove(t *testing.T) {
	out, err := run(t, "improve", "hello world")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hello_world"))
	assert.True(t, password.DefaultPolicy().Evaluate(out).Satisfied())
}

func TestImprove_MissingArgument(t *testing.T) {
	_, err := run(t, "improve")
	assert.ErrorIs(t, err, errMissingPassword)
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "strength: ")
	assert.Contains(t, out, "use at least 8 characters")
	assert.Contains(t, out, "entropy:")

	out, err = run(t, "check", "--min-length", "10", "Str0ng!Passw0rd")
	require.NoError(t, err)
	assert.Contains(t, out, "policy:   satisfied")
}
