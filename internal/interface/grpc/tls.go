package grpcservice

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

const certValidity = 365 * 24 * time.Hour

// generateTLSKeyCert writes a self-signed key pair for the daemon into the
// tls dir, unless one is already there.
func generateTLSKeyCert(c Config) error {
	if err := makeDirectoryIfNotExists(c.tlsDatadir()); err != nil {
		return err
	}
	if pathExists(c.tlsKeyPath()) && pathExists(c.tlsCertPath()) {
		return nil
	}

	host, err := os.Hostname()
	if err != nil {
		return err
	}
	template, err := certTemplate(host, c.TLSExtraDomains, c.TLSExtraIPs)
	if err != nil {
		return err
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %s", err)
	}
	keyDer, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return err
	}

	if err := writePEM(c.tlsCertPath(), "CERTIFICATE", der, 0644); err != nil {
		return err
	}
	if err := writePEM(c.tlsKeyPath(), "EC PRIVATE KEY", keyDer, 0600); err != nil {
		// nolint:errcheck
		os.Remove(c.tlsCertPath())
		return err
	}
	return nil
}

func certTemplate(host string, extraDomains, extraIPs []string) (*x509.Certificate, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %s", err)
	}

	domains := []string{host}
	if host != "localhost" {
		domains = append(domains, "localhost")
	}
	domains = append(domains, extraDomains...)

	ips := []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback}
	for _, ip := range extraIPs {
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return nil, fmt.Errorf("invalid tls extra ip %s", ip)
		}
		ips = append(ips, parsed)
	}

	notBefore := time.Now().Add(-24 * time.Hour)
	return &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"htlcd autogenerated cert"},
			CommonName:   host,
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              domains,
		IPAddresses:           ips,
	}, nil
}

func writePEM(path, blockType string, der []byte, perm os.FileMode) error {
	buf := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	return os.WriteFile(path, buf, perm)
}
