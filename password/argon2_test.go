package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
		MinLength:   8,
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	codec, err := NewArgon2(testConfig())
	require.NoError(t, err)

	hash, err := codec.Hash("Secret123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := codec.Verify("Secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = codec.Verify("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	codec, err := NewArgon2(testConfig())
	require.NoError(t, err)

	first, err := codec.Hash("Secret123")
	require.NoError(t, err)
	second, err := codec.Hash("Secret123")
	require.NoError(t, err)

	// Distinct salts per call: same input must not produce the same string.
	assert.NotEqual(t, first, second)

	for _, hash := range []string{first, second} {
		ok, err := codec.Verify("Secret123", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	codec, err := NewArgon2(testConfig())
	require.NoError(t, err)

	_, err = codec.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestVerifyMalformedHash(t *testing.T) {
	codec, err := NewArgon2(testConfig())
	require.NoError(t, err)

	cases := []string{
		"",
		"not-a-phc-string",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$AAAA",
		"$argon2id$v=19$m=8192,t=1$QUFBQUFBQUFBQUFBQUFBQQ$AAAA",
		"$bcrypt$v=19$m=8192,t=1,p=1$QUFBQUFBQUFBQUFBQUFBQQ$AAAA",
		"$argon2id$v=18$m=8192,t=1,p=1$QUFBQUFBQUFBQUFBQUFBQQ$AAAA",
		"$argon2id$v=19$m=1,t=1,p=1$QUFBQUFBQUFBQUFBQUFBQQ$AAAA",
	}

	for _, malformed := range cases {
		ok, err := codec.Verify("Secret123", malformed)
		assert.Error(t, err, "hash %q", malformed)
		assert.False(t, ok)
	}
}

func TestNeedsUpgrade(t *testing.T) {
	weak := testConfig()
	weakCodec, err := NewArgon2(weak)
	require.NoError(t, err)

	hash, err := weakCodec.Hash("Secret123")
	require.NoError(t, err)

	up, err := weakCodec.NeedsUpgrade(hash)
	require.NoError(t, err)
	assert.False(t, up)

	strong := weak
	strong.Memory = 64 * 1024
	strong.Time = 3
	strongCodec, err := NewArgon2(strong)
	require.NoError(t, err)

	up, err = strongCodec.NeedsUpgrade(hash)
	require.NoError(t, err)
	assert.True(t, up)

	// Old hash still verifies under its embedded parameters.
	ok, err := strongCodec.Verify("Secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewArgon2RejectsWeakParameters(t *testing.T) {
	cases := map[string]func(*Config){
		"memory":      func(c *Config) { c.Memory = 1024 },
		"time":        func(c *Config) { c.Time = 0 },
		"parallelism": func(c *Config) { c.Parallelism = 0 },
		"salt":        func(c *Config) { c.SaltLength = 8 },
		"key":         func(c *Config) { c.KeyLength = 8 },
		"minlength":   func(c *Config) { c.MinLength = 0 },
	}

	for name, mutate := range cases {
		cfg := testConfig()
		mutate(&cfg)
		_, err := NewArgon2(cfg)
		assert.Error(t, err, name)
	}
}
