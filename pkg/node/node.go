// Package node derives the identity a process embeds in its identifiers:
// small datacenter/worker numbers for packed integers and an opaque suffix
// for text identifiers.
//
// Both come from the hardware address and the process id. When no hardware
// address can be found the resolver falls back to randomness, so two
// processes on hosts without usable interfaces may still collide.
package node

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/weiawesome/wes-io-live/idgen/pkg/alphabet"
)

// SuffixWidth is the length of the per-process suffix.
const SuffixWidth = 6

// ErrNoHardwareAddr is returned by sources that found no usable interface.
var ErrNoHardwareAddr = errors.New("node: no hardware address available")

// Source supplies the environment signals identity is derived from.
type Source interface {
	HardwareAddr() (net.HardwareAddr, error)
	PID() int
}

// System probes the network interfaces and the process id.
type System struct{}

// HardwareAddr returns the address of the first non-loopback interface that
// has one.
func (System) HardwareAddr() (net.HardwareAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) < 2 {
			continue
		}
		return iface.HardwareAddr, nil
	}
	return nil, ErrNoHardwareAddr
}

// PID returns os.Getpid.
func (System) PID() int { return os.Getpid() }

// Static is a fixed Source for tests and for deployments that pin identity.
type Static struct {
	Addr net.HardwareAddr
	Pid  int
}

// HardwareAddr implements Source.
func (s Static) HardwareAddr() (net.HardwareAddr, error) {
	if len(s.Addr) < 2 {
		return nil, ErrNoHardwareAddr
	}
	return s.Addr, nil
}

// PID implements Source.
func (s Static) PID() int { return s.Pid }

// Resolver turns a Source into node identities. It is stateless and safe for
// concurrent use.
type Resolver struct {
	src Source
}

// NewResolver returns a resolver over src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Default resolves against the running host.
var Default = NewResolver(System{})

// DatacenterID derives a value in [0, max] from the low-order bytes of the
// hardware address, or a random one when no address is available.
func (r *Resolver) DatacenterID(max int64) int64 {
	mac, err := r.src.HardwareAddr()
	if err != nil {
		return randomBelow(max + 1)
	}
	n := len(mac)
	id := (int64(mac[n-2]) | int64(mac[n-1])<<8) >> 6
	return id % (max + 1)
}

// WorkerID derives a value in [0, max] from the datacenter id and the
// process id.
func (r *Resolver) WorkerID(datacenterID, max int64) int64 {
	key := strconv.FormatInt(datacenterID, 10) + strconv.Itoa(r.src.PID())
	h := xxhash.Sum64String(key) & 0xFFFF
	return int64(h) % (max + 1)
}

// Suffix derives a SuffixWidth-symbol Base36 string from the hardware
// address and the process id, or a random one when no address is available.
func (r *Resolver) Suffix() string {
	mac, err := r.src.HardwareAddr()
	if err != nil {
		return randomSuffix()
	}
	d := xxhash.New()
	d.Write(mac)
	var pid [8]byte
	binary.BigEndian.PutUint64(pid[:], uint64(r.src.PID()))
	d.Write(pid[:])

	space := uint64(1)
	for i := 0; i < SuffixWidth; i++ {
		space *= uint64(alphabet.Base36.Len())
	}
	return alphabet.Base36.EncodePadded(d.Sum64()%space, SuffixWidth)
}

var (
	processSuffix     string
	processSuffixOnce sync.Once
)

// ProcessSuffix returns the Default resolver's suffix, computed once.
func ProcessSuffix() string {
	processSuffixOnce.Do(func() {
		processSuffix = Default.Suffix()
	})
	return processSuffix
}

func randomSuffix() string {
	s, err := gonanoid.Generate(alphabet.Base36.Symbols(), SuffixWidth)
	if err != nil {
		// crypto/rand failed; gonanoid has nothing else to draw from
		panic("node: random suffix: " + err.Error())
	}
	return s
}

func randomBelow(n int64) int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("node: crypto/rand failed: " + err.Error())
	}
	return int64(binary.BigEndian.Uint64(b[:]) % uint64(n))
}
