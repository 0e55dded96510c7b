package grpcservice

import (
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTLSKeyCert(t *testing.T) {
	cfg := Config{
		Datadir:         t.TempDir(),
		TLSExtraIPs:     []string{"10.0.0.1"},
		TLSExtraDomains: []string{"htlc.example.org"},
	}
	require.NoError(t, cfg.Validate())

	require.NoError(t, generateTLSKeyCert(cfg))
	require.FileExists(t, cfg.tlsCertPath())
	require.FileExists(t, cfg.tlsKeyPath())

	buf, err := os.ReadFile(cfg.tlsCertPath())
	require.NoError(t, err)
	block, _ := pem.Decode(buf)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	require.Contains(t, cert.DNSNames, "localhost")
	require.Contains(t, cert.DNSNames, "htlc.example.org")
	require.True(t, containsIP(cert.IPAddresses, net.ParseIP("10.0.0.1")))

	tlsConfig, err := cfg.tlsConfig()
	require.NoError(t, err)
	require.Len(t, tlsConfig.Certificates, 1)

	// Existing files are kept.
	require.NoError(t, generateTLSKeyCert(cfg))
	again, err := os.ReadFile(cfg.tlsCertPath())
	require.NoError(t, err)
	require.Equal(t, buf, again)

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name string
			cfg  func() Config
		}{
			{
				name: "extra ip",
				cfg: func() Config {
					return Config{Datadir: t.TempDir(), TLSExtraIPs: []string{"not-an-ip"}}
				},
			},
			{
				name: "cert without key",
				cfg: func() Config {
					c := Config{Datadir: t.TempDir()}
					require.NoError(t, makeDirectoryIfNotExists(c.tlsDatadir()))
					require.NoError(t, os.WriteFile(c.tlsCertPath(), buf, 0644))
					return c
				},
			},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				require.Error(t, f.cfg().Validate())
			})
		}
	})

	t.Run("no tls", func(t *testing.T) {
		c := Config{Datadir: t.TempDir(), NoTLS: true, TLSExtraIPs: []string{"not-an-ip"}}
		require.NoError(t, c.Validate())
		tlsConfig, err := c.tlsConfig()
		require.NoError(t, err)
		require.Nil(t, tlsConfig)
	})
}

func containsIP(ips []net.IP, ip net.IP) bool {
	for _, i := range ips {
		if i.Equal(ip) {
			return true
		}
	}
	return false
}
