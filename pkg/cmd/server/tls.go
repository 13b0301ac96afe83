package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/config"
)

// certReloader serves the key pair configured by --tls-cert/--tls-key and
// reloads it when one of the files is rewritten.
type certReloader struct {
	certFile string
	keyFile  string
	log      *log.Logger
	mu       sync.RWMutex
	cert     *tls.Certificate
}

// newTLSConfig returns nil if no certificate is configured
func newTLSConfig(ctx context.Context) (*tls.Config, error) {
	if config.TLSCertFile == "" && config.TLSKeyFile == "" {
		return nil, nil
	}
	if config.TLSCertFile == "" || config.TLSKeyFile == "" {
		return nil, errors.New("both tls-cert and tls-key are required")
	}
	c := &certReloader{
		certFile: config.TLSCertFile,
		keyFile:  config.TLSKeyFile,
		log:      log.GetFromContext(ctx).Named("server.certs"),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	ret := &tls.Config{
		GetCertificate: c.getCertificate,
		MinVersion:     tls.VersionTLS13,
	}
	if config.TLSCAFile != "" {
		c.log.Info("Loading ca cert", log.String("file", config.TLSCAFile))
		caCert, err := os.ReadFile(config.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("could not read tls ca: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates found in %s", config.TLSCAFile)
		}
		ret.ClientCAs = pool
		ret.ClientAuth = tls.VerifyClientCertIfGiven
	}
	if err := c.watch(ctx); err != nil {
		c.log.Warn("certificates will not be reloaded", log.ErrorField(err))
	}
	return ret, nil
}

func (c *certReloader) getCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cert, nil
}

func (c *certReloader) load() error {
	c.log.Info("Loading cert",
		log.String("cert", c.certFile),
		log.String("key", c.keyFile))
	cert, err := tls.LoadX509KeyPair(c.certFile, c.keyFile)
	if err != nil {
		return fmt.Errorf("could not load tls key pair: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cert = &cert
	return nil
}

// watch reloads the key pair on changes until ctx is done. A broken key pair
// keeps the previous one in use.
func (c *certReloader) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, f := range []string{c.certFile, c.keyFile} {
		if err := watcher.Add(f); err != nil {
			watcher.Close()
			return err
		}
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					c.log.Info("cert file changed, reloading",
						log.String("file", event.Name))
					if err := c.load(); err != nil {
						c.log.Error("keeping previous cert", log.ErrorField(err))
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.log.Error("watcher error", log.ErrorField(err))
			}
		}
	}()
	return nil
}
