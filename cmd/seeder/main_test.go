package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"hash", "--cost", "4", "123456", "secret"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	hashes := strings.Fields(out.String())
	require.Len(t, hashes, 2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashes[0]), []byte("123456")))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashes[1]), []byte("secret")))
}

func TestImportCommandRejectsArgs(t *testing.T) {
	rootCmd.SetArgs([]string{"import", "extra"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.Execute())
}
