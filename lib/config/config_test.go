// config_test.go tests config files
package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileToTest is a relative path to the configuration file to test (ie. supply/cmd/conf.json)
var fileToTest string = "../../cmd/conf.json"

// TestConfig extracts config from a file and checks values loaded
func TestConfig(t *testing.T) {
	conf, err := ExtractConfiguration(fileToTest)
	require.NoError(t, err)

	assert.Equal(t, "3030", conf.Port)
	assert.Equal(t, "memory", conf.DBType)
	assert.Equal(t, "BLP", conf.Token.Symbol)
	assert.Len(t, conf.Token.NonCirculating, 3)
	assert.Equal(t, 1, conf.Parallel)
	assert.NoError(t, conf.Token.Check())
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("CSUP_PORT", "8080")
	t.Setenv("CSUP_LEDGER_APIKEY", "key")
	t.Setenv("CSUP_JWT_SECRET", "secret")
	t.Setenv("CSUP_PARALLEL", "4")
	t.Setenv("CSUP_TOKEN", `{"symbol":"TKN","contract":"0xabc","noncirculating":["0x1","0x2"]}`)

	conf, err := ExtractConfiguration(fileToTest)
	require.NoError(t, err)

	assert.Equal(t, "8080", conf.Port)
	assert.Equal(t, "key", conf.Ledger.APIKey)
	assert.Equal(t, "secret", conf.JWTSecret)
	assert.Equal(t, 4, conf.Parallel)
	assert.Equal(t, TokenConfig{Symbol: "TKN", Contract: "0xabc", NonCirculating: []string{"0x1", "0x2"}}, conf.Token)

	// secrets are never printed
	s := conf.String()
	assert.NotContains(t, s, "secret")
	assert.True(t, strings.Contains(s, "****"))
}

func TestConfigStringConnections(t *testing.T) {
	s := ServiceConfig{
		DBConn: "postgres://admin:hunter2@db/supply",
		MbConn: "amqp://user:pw123@mq:5672",
	}.String()
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "pw123")
	assert.Contains(t, s, "postgres://admin:xxxxx@db/supply")
	assert.Contains(t, s, "amqp://user:xxxxx@mq:5672")

	for conn, exp := range map[string]string{
		"":                                     "",
		"mongodb://db:27017":                   "mongodb://db:27017",
		"host=db user=admin password=hunter2":  "****",
		"postgres://admin:hunter2@db:5432/x?a": "postgres://admin:xxxxx@db:5432/x?a",
	} {
		assert.Equal(t, exp, maskConn(conn), conn)
	}
}

func TestConfigBadEnv(t *testing.T) {
	t.Setenv("CSUP_TOKEN", "{not json")

	_, err := ExtractConfiguration("")
	assert.Error(t, err)
}

func TestConfigNoFile(t *testing.T) {
	_, err := ExtractConfiguration("does-not-exist.json")
	assert.Error(t, err)
}

func TestTokenCheck(t *testing.T) {
	cases := []struct {
		name string
		tok  TokenConfig
		ok   bool
	}{
		{"complete", TokenConfig{Contract: "0xabc", NonCirculating: []string{"0x1"}}, true},
		{"noContract", TokenConfig{NonCirculating: []string{"0x1"}}, false},
		{"noAddresses", TokenConfig{Contract: "0xabc"}, false},
		{"emptyAddresses", TokenConfig{Contract: "0xabc", NonCirculating: []string{}}, false},
	}
	for _, c := range cases {
		err := c.tok.Check()
		if c.ok {
			assert.NoError(t, err, c.name)
		} else {
			assert.True(t, errors.Is(err, ErrMissing), c.name)
		}
	}
}

func TestTokenDuplicates(t *testing.T) {
	tok := TokenConfig{NonCirculating: []string{"0x1", "0x2", "0x1", "0x3", "0x1", "0x2"}}
	assert.Equal(t, []string{"0x1", "0x2"}, tok.Duplicates())
	assert.Empty(t, TokenConfig{NonCirculating: []string{"0x1"}}.Duplicates())
	assert.Equal(t, []string{"0xAb"}, TokenConfig{NonCirculating: []string{"0xAb", "0xab"}}.Duplicates())
}
