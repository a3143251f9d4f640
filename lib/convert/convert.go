// Package convert derives the address representations of a compressed secp256k1 public key: the ethereum checksum
// address plus the bech32 wallet, validator-operator and validator-consensus forms used by cosmos-style chains.
package convert

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160"
)

// PrefixDefault is the bech32 human readable part used when the network config does not set one.
const PrefixDefault = "story"

// compressedKeyLen is the length of a compressed secp256k1 public key.
const compressedKeyLen = 33

// ErrInvalidKey means the input did not decode to a 33-byte compressed secp256k1 public key.
var ErrInvalidKey = errors.New("public key is not compressed or has invalid length")

// Addresses holds every representation derived from one compressed public key.
type Addresses struct {
	EVM             string `json:"evm"`
	CompressedHex   string `json:"compressedHex"`
	UncompressedHex string `json:"uncompressedHex"`
	Wallet          string `json:"wallet"`
	Valoper         string `json:"valoper"`
	Valcons         string `json:"valcons"`
	ConsensusHex    string `json:"consensusHex"`
}

// Derive decodes the base64 compressed public key and returns all derived addresses. prefix is the bech32 human
// readable part of the target chain; <prefix>valoper and <prefix>valcons are derived from it.
func Derive(pubKeyBase64, prefix string) (Addresses, error) {
	if prefix == "" {
		prefix = PrefixDefault
	}

	raw, err := base64.StdEncoding.DecodeString(pubKeyBase64)
	if err != nil {
		return Addresses{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(raw) != compressedKeyLen {
		return Addresses{}, ErrInvalidKey
	}

	pub, err := crypto.DecompressPubkey(raw)
	if err != nil {
		return Addresses{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	// 65 bytes with the 0x04 marker; the hex form drops the marker
	uncompressed := crypto.FromECDSAPub(pub)

	a := Addresses{
		EVM:             crypto.PubkeyToAddress(*pub).Hex(),
		CompressedHex:   hex.EncodeToString(raw),
		UncompressedHex: hex.EncodeToString(uncompressed[1:]),
		ConsensusHex:    strings.ToUpper(hex.EncodeToString(raw)),
	}

	if a.Wallet, err = toBech32(prefix, raw); err != nil {
		return Addresses{}, err
	}
	if a.Valoper, err = toBech32(prefix+"valoper", raw); err != nil {
		return Addresses{}, err
	}
	if a.Valcons, err = toBech32(prefix+"valcons", raw); err != nil {
		return Addresses{}, err
	}

	return a, nil
}

// toBech32 encodes ripemd160(sha256(key)) under the given human readable part.
func toBech32(hrp string, key []byte) (string, error) {
	sum := sha256.Sum256(key)

	h := ripemd160.New()
	h.Write(sum[:])

	conv, err := bech32.ConvertBits(h.Sum(nil), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("cannot convert address bits for %s: %w", hrp, err)
	}

	return bech32.Encode(hrp, conv)
}
