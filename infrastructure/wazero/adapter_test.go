package wazero

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/hostfuncs"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// fakeMemory is a flat guest memory with a bump allocator behind the
// guest's allocate export.
type fakeMemory struct {
	api.Memory
	buf  []byte
	next uint32
}

func newFakeMemory(size int) *fakeMemory {
	return &fakeMemory{buf: make([]byte, size), next: 8}
}

func (m *fakeMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[offset:end], true
}

func (m *fakeMemory) Write(offset uint32, v []byte) bool {
	if uint64(offset)+uint64(len(v)) > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[offset:], v)
	return true
}

// put places data in guest memory and returns its packed region.
func (m *fakeMemory) put(data []byte) uint64 {
	ptr := m.alloc(uint32(len(data)))
	m.Write(ptr, data)
	return packPtrLen(ptr, uint32(len(data)))
}

func (m *fakeMemory) alloc(size uint32) uint32 {
	ptr := m.next
	m.next += size
	return ptr
}

type allocateFunc struct {
	api.Function
	mem *fakeMemory
}

func (f allocateFunc) Call(_ context.Context, params ...uint64) ([]uint64, error) {
	return []uint64{uint64(f.mem.alloc(uint32(params[0])))}, nil
}

type fakeModule struct {
	api.Module
	mem  *fakeMemory
	name string
}

func (m *fakeModule) Name() string { return m.name }

func (m *fakeModule) Memory() api.Memory { return m.mem }

func (m *fakeModule) ExportedFunction(name string) api.Function {
	if name == "allocate" {
		return allocateFunc{mem: m.mem}
	}
	return nil
}

func newFakeModule(name string) *fakeModule {
	return &fakeModule{mem: newFakeMemory(1 << 16), name: name}
}

func (m *fakeModule) reply(t *testing.T, packed uint64) entities.HostReply {
	t.Helper()
	require.NotZero(t, packed)
	ptr, length := unpackPtrLen(packed)
	data, ok := m.mem.Read(ptr, length)
	require.True(t, ok)

	var reply entities.HostReply
	require.NoError(t, wireformat.Decode(data, &reply))
	return reply
}

func testRegistry(t *testing.T) *hostfuncs.Registry {
	t.Helper()
	reg, err := hostfuncs.NewRegistry(
		hostfuncs.WithHandler(capabilities.NetLookupHost, func(ctx context.Context, req entities.LookupHostRequest) (entities.LookupHostResponse, error) {
			name, _ := hostfuncs.PolicyNameFromContext(ctx)
			return entities.LookupHostResponse{IPs: []string{req.Host, name}}, nil
		}),
	)
	require.NoError(t, err)
	return reg
}

func TestDefaultAdapterConfig(t *testing.T) {
	cfg := defaultAdapterConfig()

	assert.Equal(t, "policy_host", cfg.ModuleName)
	assert.Equal(t, uint32(hostfuncs.DefaultMaxRequestSize), cfg.MaxRequestSize)
	assert.NotNil(t, cfg.Logger)
}

func TestOptions(t *testing.T) {
	cfg := defaultAdapterConfig()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	WithModuleName("custom_module")(&cfg)
	WithMaxRequestSize(2048)(&cfg)
	WithLogger(logger)(&cfg)
	WithLogger(nil)(&cfg)

	assert.Equal(t, "custom_module", cfg.ModuleName)
	assert.Equal(t, uint32(2048), cfg.MaxRequestSize)
	assert.Same(t, logger, cfg.Logger)
}

func TestPackUnpackPtrLen(t *testing.T) {
	tests := []struct {
		ptr    uint32
		length uint32
	}{
		{0, 0},
		{1, 1},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{0x12345678, 0x9ABCDEF0},
		{100, 50},
	}

	for _, tt := range tests {
		gotPtr, gotLen := unpackPtrLen(packPtrLen(tt.ptr, tt.length))
		assert.Equal(t, tt.ptr, gotPtr)
		assert.Equal(t, tt.length, gotLen)
	}
}

func TestHandleHostCall(t *testing.T) {
	reg := testRegistry(t)
	cfg := defaultAdapterConfig()

	t.Run("served", func(t *testing.T) {
		mod := newFakeModule("require-labels")
		payload, err := wireformat.Encode(entities.LookupHostRequest{Host: "db.local"})
		require.NoError(t, err)

		stack := []uint64{mod.mem.put([]byte("net")), mod.mem.put([]byte("lookup_host")), mod.mem.put(payload)}
		reply := mod.reply(t, handleHostCall(context.Background(), mod, stack, reg, cfg))
		require.False(t, reply.Failed())

		var resp entities.LookupHostResponse
		require.NoError(t, wireformat.Decode(reply.Payload, &resp))
		assert.Equal(t, []string{"db.local", "require-labels"}, resp.IPs)
	})

	t.Run("unknown operation", func(t *testing.T) {
		mod := newFakeModule("p")
		stack := []uint64{mod.mem.put([]byte("net")), mod.mem.put([]byte("ping")), 0}
		reply := mod.reply(t, handleHostCall(context.Background(), mod, stack, reg, cfg))
		require.True(t, reply.Failed())
		assert.Equal(t, int32(404), reply.Error.Code)
		assert.Equal(t, "capability not registered: net/ping", reply.Error.Message)
	})

	t.Run("oversized payload", func(t *testing.T) {
		mod := newFakeModule("p")
		small := cfg
		small.MaxRequestSize = 4
		stack := []uint64{mod.mem.put([]byte("net")), mod.mem.put([]byte("lookup_host")), mod.mem.put([]byte("0123456789"))}
		reply := mod.reply(t, handleHostCall(context.Background(), mod, stack, reg, small))
		require.True(t, reply.Failed())
		assert.Equal(t, int32(400), reply.Error.Code)
		assert.Contains(t, reply.Error.Message, "exceeds maximum 4 bytes")
	})

	t.Run("region outside memory", func(t *testing.T) {
		mod := newFakeModule("p")
		stack := []uint64{packPtrLen(0xFFFFFF00, 0x10), 0, 0}
		reply := mod.reply(t, handleHostCall(context.Background(), mod, stack, reg, cfg))
		require.True(t, reply.Failed())
		assert.Equal(t, int32(400), reply.Error.Code)
		assert.Contains(t, reply.Error.Message, "outside guest memory")
	})
}

func TestHandleHostCall_NoAllocate(t *testing.T) {
	mod := &noAllocModule{fakeModule: newFakeModule("p")}
	stack := []uint64{mod.mem.put([]byte("net")), mod.mem.put([]byte("lookup_host")), 0}

	packed := handleHostCall(context.Background(), mod, stack, testRegistry(t), defaultAdapterConfig())
	assert.Zero(t, packed)
}

type noAllocModule struct {
	*fakeModule
}

func (noAllocModule) ExportedFunction(string) api.Function { return nil }

func TestHandleLogMessage(t *testing.T) {
	var buf bytes.Buffer
	cfg := defaultAdapterConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mod := newFakeModule("require-labels")
	rec, err := wireformat.Encode(entities.LogRecord{
		Time:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Level:   "WARN",
		Message: "label missing",
		Attrs:   []entities.LogAttr{{Key: "label", Type: "string", Value: "env"}},
	})
	require.NoError(t, err)

	handleLogMessage(context.Background(), mod, mod.mem.put(rec), cfg)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="label missing"`)
	assert.Contains(t, out, "policy=require-labels")
	assert.Contains(t, out, "label=env")

	buf.Reset()
	handleLogMessage(context.Background(), mod, mod.mem.put([]byte{0xff}), cfg)
	assert.Contains(t, buf.String(), "malformed guest log record")
}

func TestPolicyName(t *testing.T) {
	mod := newFakeModule("from-module")
	assert.Equal(t, "from-module", PolicyName(context.Background(), mod))
	assert.Equal(t, "from-context", PolicyName(hostfuncs.WithPolicyName(context.Background(), "from-context"), mod))
}

func TestRegisterWithRuntime(t *testing.T) {
	ctx := context.Background()
	runtime := wazero.NewRuntime(ctx)
	defer runtime.Close(ctx)

	require.NoError(t, RegisterWithRuntime(ctx, runtime, testRegistry(t)))

	mod := runtime.Module("policy_host")
	require.NotNil(t, mod)
	assert.NotNil(t, mod.ExportedFunction(HostCallFunction))
	assert.NotNil(t, mod.ExportedFunction(LogMessageFunction))

	err := RegisterWithRuntime(ctx, runtime, testRegistry(t))
	assert.Error(t, err)
}
