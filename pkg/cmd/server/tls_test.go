package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/tyre-strategy/pkg/config"
)

func writeKeyPair(t *testing.T, dir, cn string) (certFile, keyFile string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDer, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile,
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer}), 0o600))
	return certFile, keyFile
}

func setTLSFlags(t *testing.T, cert, key string) {
	t.Helper()
	oldCert, oldKey := config.TLSCertFile, config.TLSKeyFile
	config.TLSCertFile, config.TLSKeyFile = cert, key
	t.Cleanup(func() { config.TLSCertFile, config.TLSKeyFile = oldCert, oldKey })
}

func TestNewTLSConfig(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "tsa.local")

	tests := []struct {
		name    string
		cert    string
		key     string
		wantNil bool
		wantErr bool
	}{
		{name: "disabled", wantNil: true},
		{name: "missing key", cert: certFile, wantErr: true},
		{name: "unreadable", cert: filepath.Join(dir, "nope.pem"), key: keyFile, wantErr: true},
		{name: "key pair", cert: certFile, key: keyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTLSFlags(t, tt.cert, tt.key)
			got, err := newTLSConfig(t.Context())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			cert, err := got.GetCertificate(nil)
			require.NoError(t, err)
			leaf, err := x509.ParseCertificate(cert.Certificate[0])
			require.NoError(t, err)
			assert.Equal(t, "tsa.local", leaf.Subject.CommonName)
		})
	}
}

func TestCertReload(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "first")
	setTLSFlags(t, certFile, keyFile)

	cfg, err := newTLSConfig(t.Context())
	require.NoError(t, err)

	writeKeyPair(t, dir, "second")
	assert.Eventually(t, func() bool {
		cert, err := cfg.GetCertificate(nil)
		if err != nil {
			return false
		}
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		return err == nil && leaf.Subject.CommonName == "second"
	}, 5*time.Second, 50*time.Millisecond)
}
