package secrets

import (
	"errors"
	"testing"

	"filippo.io/age"
)

func newTestIdentity(t *testing.T) *age.X25519Identity {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	return identity
}

func TestVaultSealOpenRoundTrip(t *testing.T) {
	identity := newTestIdentity(t)

	v, err := NewVault(&Config{AgePrivateKey: identity.String()}, nil)
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	const token = "1//refresh-token-value"
	sealed, err := v.Seal(token)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if string(sealed) == token {
		t.Fatal("sealed output contains the plaintext token")
	}

	opened, err := v.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened != token {
		t.Errorf("Open = %q, want %q", opened, token)
	}
}

func TestVaultPublicKeyOnly(t *testing.T) {
	identity := newTestIdentity(t)

	v, err := NewVault(&Config{AgePublicKey: identity.Recipient().String()}, nil)
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	if !v.CanSeal() {
		t.Error("public-key vault should seal")
	}
	if v.CanOpen() {
		t.Error("public-key vault should not open")
	}

	sealed, err := v.Seal("secret")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := v.Open(sealed); !errors.Is(err, ErrNoPrivateKey) {
		t.Errorf("Open err = %v, want ErrNoPrivateKey", err)
	}
}

func TestVaultWrongKeyFailsToOpen(t *testing.T) {
	sealer, err := NewVault(&Config{AgePrivateKey: newTestIdentity(t).String()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	opener, err := NewVault(&Config{AgePrivateKey: newTestIdentity(t).String()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	sealed, err := sealer.Seal("secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := opener.Open(sealed); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Open err = %v, want ErrDecryptionFailed", err)
	}
}

func TestVaultRequiresAKey(t *testing.T) {
	if _, err := NewVault(&Config{}, nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("err = %v, want ErrInvalidKey", err)
	}
}

func TestVaultRejectsMalformedKeys(t *testing.T) {
	if _, err := NewVault(&Config{AgePublicKey: "not-a-key"}, nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("bad public key err = %v", err)
	}
	if _, err := NewVault(&Config{AgePrivateKey: "not-a-key"}, nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("bad private key err = %v", err)
	}
}
