// Command cryptid runs one round of a pairing-based scheme: it sets up a
// master key, issues a key, encrypts or signs a message and checks the
// result.
//
//	cryptid --scheme ibe --identity alice@example.com --message hello
//	cryptid --scheme ibs --curve bn254 --identity bob --message hello
//	cryptid --scheme cpabe --attributes finance,manager --policy "finance and manager"
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/op/go-logging.v1"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/cpabe"
	"github.com/Iscaraca/cryptid/ibe"
	"github.com/Iscaraca/cryptid/ibs"
	"github.com/Iscaraca/cryptid/internal/logger"
	"github.com/Iscaraca/cryptid/pairing"
)

type options struct {
	level      string
	scheme     string
	curve      string
	identity   string
	attributes []string
	policy     string
	message    string
	logLevel   string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "cryptid: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := pflag.NewFlagSet("cryptid", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.level, "level", "lowest", "security level: lowest, low, medium, high, highest")
	fs.StringVar(&o.scheme, "scheme", "ibe", "scheme: ibe, ibs or cpabe")
	fs.StringVar(&o.curve, "curve", "type1", "pairing group: type1, bls12-381 or bn254")
	fs.StringVar(&o.identity, "identity", "alice@example.com", "identity for ibe and ibs")
	fs.StringSliceVar(&o.attributes, "attributes", []string{"finance", "manager"}, "attributes of the cpabe key")
	fs.StringVar(&o.policy, "policy", "finance and manager", "cpabe access policy")
	fs.StringVarP(&o.message, "message", "m", "hello, pairing world", "message to encrypt or sign")
	fs.StringVar(&o.logLevel, "log-level", "INFO", "log level: DEBUG, INFO, WARNING, ERROR")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	lg, err := logger.New(stderr, o.logLevel)
	if err != nil {
		return err
	}
	log := lg.GetLogger("cryptid")

	level, err := cryptid.ParseSecurityLevel(o.level)
	if err != nil {
		return err
	}
	group, err := selectGroup(o.curve, level)
	if err != nil {
		return err
	}
	hf := cryptid.HashFunctionForSecurityLevel(level)
	log.Infof("scheme %s over %s at level %s, digest %s", o.scheme, group.Name(), level, hf)

	var out []byte
	switch strings.ToLower(o.scheme) {
	case "ibe":
		out, err = runIBE(log, group, hf, o)
	case "ibs":
		out, err = runIBS(log, group, hf, o)
	case "cpabe":
		out, err = runCPABE(log, group, hf, o)
	default:
		return fmt.Errorf("unknown scheme %q", o.scheme)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", out)
	return err
}

func selectGroup(name string, level cryptid.SecurityLevel) (pairing.Group, error) {
	switch strings.ToLower(name) {
	case "type1":
		return pairing.GenerateType1(nil, level)
	case "bls12-381", "bls12381":
		return pairing.BLS12381(), nil
	case "bn254":
		return pairing.BN254(), nil
	default:
		return nil, fmt.Errorf("unknown curve %q", name)
	}
}

func runIBE(log *logging.Logger, g pairing.Group, hf cryptid.HashFunction, o *options) ([]byte, error) {
	mk, pk, err := ibe.SetupWithGroup(g, hf, nil)
	if err != nil {
		return nil, err
	}
	sk, err := mk.Extract(o.identity)
	if err != nil {
		mk.Destroy()
		return nil, err
	}
	ct, err := pk.Encrypt(o.identity, []byte(o.message))
	if err != nil {
		cryptid.DestroyAll(mk, sk)
		return nil, err
	}
	defer cryptid.DestroyAll(mk, sk, ct)
	log.Debugf("ciphertext: |V| = %d, |W| = %d", len(ct.V), len(ct.W))

	m, err := sk.Decrypt(ct)
	if err != nil {
		return nil, err
	}
	log.Infof("decrypted %d bytes for %s", len(m), o.identity)
	return m, nil
}

func runIBS(log *logging.Logger, g pairing.Group, hf cryptid.HashFunction, o *options) ([]byte, error) {
	mk, pk, err := ibs.SetupWithGroup(g, hf, nil)
	if err != nil {
		return nil, err
	}
	sk, err := mk.Extract(o.identity)
	if err != nil {
		mk.Destroy()
		return nil, err
	}
	sig, err := sk.Sign([]byte(o.message))
	if err != nil {
		cryptid.DestroyAll(mk, sk)
		return nil, err
	}
	defer cryptid.DestroyAll(mk, sk, sig)

	res, err := pk.Verify(o.identity, []byte(o.message), sig)
	if err != nil {
		return nil, err
	}
	log.Infof("signature by %s: %s", o.identity, res)
	if !res.OK() {
		return nil, errors.New("signature did not verify")
	}
	return []byte(res.String()), nil
}

func runCPABE(log *logging.Logger, g pairing.Group, hf cryptid.HashFunction, o *options) ([]byte, error) {
	policy, err := cpabe.ParsePolicy(o.policy)
	if err != nil {
		return nil, err
	}
	mk, pk, err := cpabe.SetupWithGroup(g, hf, nil)
	if err != nil {
		return nil, err
	}
	sk, err := mk.KeyGen(o.attributes)
	if err != nil {
		mk.Destroy()
		return nil, err
	}
	ct, err := pk.Encrypt(policy, []byte(o.message))
	if err != nil {
		cryptid.DestroyAll(mk, sk)
		return nil, err
	}
	defer cryptid.DestroyAll(mk, sk, ct)
	log.Debugf("policy %s, %d leaf shares", policy, len(ct.Leaves))

	m, err := sk.Decrypt(ct)
	if err != nil {
		log.Warningf("attributes %v do not open %s", o.attributes, policy)
		return nil, err
	}
	log.Infof("decrypted %d bytes with attributes %v", len(m), o.attributes)
	return m, nil
}
