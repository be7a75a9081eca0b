// Package pdktest provides an in-process Extism host for exercising plugins
// built on the pdk package without compiling them to WebAssembly.
//
// The host keeps its memory in a real wasm linear memory (via wazero) and
// implements every `extism:host/env` import: input/output, allocation,
// config, variables, logging and the variable-driven HTTP protocol.
package pdktest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	pdk "github.com/extism/go-pdk"
	"github.com/extism/go-pdk/internal/kernel"
)

const (
	defaultMaxVarBytes          = int64(1024 * 1024)
	defaultMaxHTTPResponseBytes = int64(1024 * 1024 * 50)
)

// memoryModule is the smallest wasm module exporting a linear memory:
// one memory of initial size one page, exported as "memory".
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // export section
}

// LogEntry is one message a plugin sent to a host log function.
type LogEntry struct {
	Level   pdk.LogLevel
	Message string
}

// Host is a simulated Extism host. It implements the kernel the pdk package
// calls into; Install makes it the active one.
type Host struct {
	mu sync.Mutex

	ctx     context.Context
	runtime wazero.Runtime
	memory  api.Memory

	next   uint64
	blocks map[uint64]uint64
	faults []string

	input     []byte
	output    []byte
	hasOutput bool
	errMsg    []byte
	hasError  bool

	config map[string]string
	vars   map[string][]byte
	logs   []LogEntry

	allowedHosts []string
	allowed      []glob.Glob
	client       *http.Client
	responses    map[uint64]int

	LastStatusCode       int
	MaxVarBytes          int64
	MaxHTTPResponseBytes int64

	logger *zap.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithConfig adds configuration values visible through pdk.GetConfig.
func WithConfig(config map[string]string) Option {
	return func(h *Host) {
		for k, v := range config {
			h.config[k] = v
		}
	}
}

// WithVar presets a plugin variable.
func WithVar(name string, value []byte) Option {
	return func(h *Host) {
		h.vars[name] = append([]byte(nil), value...)
	}
}

// WithAllowedHosts sets the hosts plugins may reach over HTTP. Entries are
// exact host names or glob patterns. No entries means every request is denied.
func WithAllowedHosts(hosts ...string) Option {
	return func(h *Host) {
		h.allowedHosts = append(h.allowedHosts, hosts...)
	}
}

// WithHTTPClient sets the client used to execute plugin HTTP requests.
func WithHTTPClient(client *http.Client) Option {
	return func(h *Host) {
		h.client = client
	}
}

// WithLogger mirrors plugin log lines and host diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithMaxVarBytes limits the total size of the variable store.
func WithMaxVarBytes(n int64) Option {
	return func(h *Host) {
		h.MaxVarBytes = n
	}
}

// WithMaxHTTPResponseBytes limits the size of an HTTP response body.
func WithMaxHTTPResponseBytes(n int64) Option {
	return func(h *Host) {
		h.MaxHTTPResponseBytes = n
	}
}

// New creates a host. Close releases its memory.
func New(ctx context.Context, opts ...Option) (*Host, error) {
	rt := wazero.NewRuntime(ctx)
	mod, err := rt.Instantiate(ctx, memoryModule)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiating host memory: %w", err)
	}

	h := &Host{
		ctx:                  ctx,
		runtime:              rt,
		memory:               mod.ExportedMemory("memory"),
		next:                 8,
		blocks:               make(map[uint64]uint64),
		config:               make(map[string]string),
		vars:                 make(map[string][]byte),
		responses:            make(map[uint64]int),
		client:               http.DefaultClient,
		MaxVarBytes:          defaultMaxVarBytes,
		MaxHTTPResponseBytes: defaultMaxHTTPResponseBytes,
		logger:               zap.NewNop(),
	}

	for _, opt := range opts {
		opt(h)
	}

	for _, pattern := range h.allowedHosts {
		g, err := glob.Compile(pattern)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("invalid allowed host %q: %w", pattern, err)
		}
		h.allowed = append(h.allowed, g)
	}

	return h, nil
}

// Close releases the host's wasm runtime.
func (h *Host) Close() error {
	return h.runtime.Close(h.ctx)
}

// Install makes h the kernel used by the pdk package until restore is called.
func (h *Host) Install() (restore func()) {
	return kernel.Use(h)
}

// Call runs an exported entry point with the given input, following the
// Extism calling convention: a nonzero return means the error channel holds
// the reason, zero means the output is valid. A trap (panic) in the plugin
// returns rc -1 and an error.
func (h *Host) Call(fn func() int32, input []byte) (int32, []byte, error) {
	h.mu.Lock()
	h.input = append([]byte(nil), input...)
	h.output, h.hasOutput = nil, false
	h.errMsg, h.hasError = nil, false
	h.mu.Unlock()

	rc, err := h.run(fn)
	if err != nil {
		return rc, []byte{}, err
	}

	if rc != 0 {
		errMsg := h.ErrorMessage()
		if errMsg == "" {
			errMsg = "Call failed"
		}
		return rc, []byte{}, errors.New(errMsg)
	}

	return rc, h.Output(), nil
}

// run calls fn with h installed. A panic inside fn is a trap: it is
// reported as an error with rc -1, the way wazero reports a host abort.
func (h *Host) run(fn func() int32) (rc int32, err error) {
	restore := h.Install()
	defer restore()

	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("plugin trapped", zap.Any("reason", r))
			rc, err = -1, fmt.Errorf("plugin trapped: %v", r)
		}
	}()

	return fn(), nil
}

// SetInput replaces the invocation input.
func (h *Host) SetInput(input []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.input = append([]byte(nil), input...)
}

// Output returns the last output set by the plugin.
func (h *Host) Output() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.output...)
}

// HasOutput reports whether the plugin set an output during the last call.
func (h *Host) HasOutput() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hasOutput
}

// ErrorMessage returns the last error set by the plugin.
func (h *Host) ErrorMessage() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return string(h.errMsg)
}

// HasError reports whether the plugin set an error during the last call.
func (h *Host) HasError() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hasError
}

// Logs returns every log line received so far.
func (h *Host) Logs() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogEntry(nil), h.logs...)
}

// Var returns a variable and whether it is set.
func (h *Host) Var(name string) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.vars[name]
	return append([]byte(nil), v...), ok
}

// SetVar sets a variable from the host side.
func (h *Host) SetVar(name string, value []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.vars[name] = append([]byte(nil), value...)
}

// SetConfig sets a configuration value.
func (h *Host) SetConfig(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.config[key] = value
}

// Live returns the number of host allocations not yet freed.
func (h *Host) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.blocks)
}

// Faults returns misuse the host detected, such as freeing an address twice.
func (h *Host) Faults() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.faults...)
}

func (h *Host) InputLength() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return uint64(len(h.input))
}

func (h *Host) InputLoad(offset uint64, buf []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if offset+uint64(len(buf)) > uint64(len(h.input)) {
		panic(fmt.Sprintf("input load out of bounds: offset %d, length %d, input %d", offset, len(buf), len(h.input)))
	}
	copy(buf, h.input[offset:])
}

func (h *Host) OutputSet(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.output = append([]byte(nil), data...)
	h.hasOutput = true
}

func (h *Host) ErrorSet(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errMsg = append([]byte(nil), data...)
	h.hasError = true
}

func (h *Host) ConfigGet(key []byte) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	value, ok := h.config[string(key)]
	if !ok {
		// Return 0 without an error if key is not found
		return 0
	}

	return h.writeBytes([]byte(value))
}

func (h *Host) VarGet(name []byte) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	value, ok := h.vars[string(name)]
	if !ok {
		// Return 0 without an error if key is not found
		return 0
	}

	return h.writeBytes(value)
}

func (h *Host) VarSet(name, value []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.MaxVarBytes == 0 {
		panic("Vars are disabled by this host")
	}

	key := string(name)

	// Calculate size including the new key/value, replacing any old value.
	// Responses published by the host do not count against the plugin.
	size := int64(len(key) + len(value))
	for k, v := range h.vars {
		if k == key || strings.HasPrefix(k, responsePrefix) {
			continue
		}
		size += int64(len(k) + len(v))
	}

	if size > h.MaxVarBytes {
		panic("Variable store is full")
	}

	h.vars[key] = append([]byte(nil), value...)
}

func (h *Host) LogInfo(msg []byte) { h.log(pdk.LogInfo, msg) }
func (h *Host) LogDebug(msg []byte) { h.log(pdk.LogDebug, msg) }
func (h *Host) LogWarn(msg []byte) { h.log(pdk.LogWarn, msg) }
func (h *Host) LogError(msg []byte) { h.log(pdk.LogError, msg) }

func (h *Host) log(level pdk.LogLevel, msg []byte) {
	message := string(msg)

	h.mu.Lock()
	h.logs = append(h.logs, LogEntry{Level: level, Message: message})
	h.mu.Unlock()

	switch level {
	case pdk.LogDebug:
		h.logger.Debug(message, zap.String("origin", "plugin"))
	case pdk.LogInfo:
		h.logger.Info(message, zap.String("origin", "plugin"))
	case pdk.LogWarn:
		h.logger.Warn(message, zap.String("origin", "plugin"))
	default:
		h.logger.Error(message, zap.String("origin", "plugin"))
	}
}

// fault records misuse. Callers hold h.mu.
func (h *Host) fault(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	h.faults = append(h.faults, msg)
	h.logger.Warn("plugin fault", zap.String("fault", msg))
}
