// Package security selects transport credentials for the gRPC connection.
package security

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Layer produces the dial option that secures the connection.
type Layer interface {
	DialOption() (grpc.DialOption, error)
}

// TLSDialer verifies the server against a CA certificate file.
type TLSDialer struct {
	caFileName string
	serverName string
}

// NewTLSDialer creates a TLSDialer. serverName overrides the name checked
// against the server certificate; empty uses the dialed host.
func NewTLSDialer(caFileName, serverName string) *TLSDialer {
	return &TLSDialer{
		caFileName: caFileName,
		serverName: serverName,
	}
}

// DialOption loads the CA certificate and returns TLS transport credentials.
func (d *TLSDialer) DialOption() (grpc.DialOption, error) {
	creds, err := credentials.NewClientTLSFromFile(d.caFileName, d.serverName)
	if err != nil {
		return nil, fmt.Errorf("failed to load CA certificate: %w", err)
	}
	return grpc.WithTransportCredentials(creds), nil
}

// PlainDialer dials without TLS.
type PlainDialer struct{}

func NewPlainDialer() *PlainDialer {
	return &PlainDialer{}
}

func (d *PlainDialer) DialOption() (grpc.DialOption, error) {
	return grpc.WithTransportCredentials(insecure.NewCredentials()), nil
}

// New returns a TLSDialer when enableTLS is set, otherwise a PlainDialer.
func New(enableTLS bool, caFileName string) Layer {
	if enableTLS {
		return NewTLSDialer(caFileName, "")
	}
	return NewPlainDialer()
}
