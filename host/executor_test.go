//go:build !hostdebug

package host_test

import (
	"context"
	"sync"
	"testing"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/host"
	zwazero "github.com/reglet-dev/zendext-sdk/infrastructure/wazero"
	"github.com/reglet-dev/zendext-sdk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type event struct {
	kind    entities.ErrorType
	file    string
	line    uint32
	message string
}

type ExecutorSuite struct {
	suite.Suite
	ctx      context.Context
	executor *host.Executor

	mu     sync.Mutex
	events []event
}

func (s *ExecutorSuite) SetupTest() {
	s.ctx = context.Background()
	s.events = nil

	e, err := host.NewExecutor(s.ctx,
		host.WithObserver(func(kind entities.ErrorType, file *entities.ZendStr, line uint32, message *entities.ZendStr) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.events = append(s.events, event{kind, file.String(), line, message.String()})
		}),
		host.WithEngineOptions(zwazero.WithMaxStringSize(4096)),
	)
	s.Require().NoError(err)
	s.executor = e
}

func (s *ExecutorSuite) TearDownTest() {
	s.NoError(s.executor.Close(s.ctx))
}

func (s *ExecutorSuite) TestLoadEngine() {
	s.Nil(s.executor.Allocator())
	s.Require().NoError(s.executor.LoadEngine(s.ctx, testutil.EngineModule()))

	a := s.executor.Allocator()
	s.Require().NotNil(a)
	str, err := a.EstrdupString("zend")
	s.Require().NoError(err)
	got, err := a.ReadString(str)
	s.Require().NoError(err)
	s.Equal("zend", string(got))
}

func (s *ExecutorSuite) TestLoadEngineTwice() {
	s.Require().NoError(s.executor.LoadEngine(s.ctx, testutil.EngineModule()))
	s.ErrorIs(s.executor.LoadEngine(s.ctx, testutil.EngineModule()), host.ErrEngineLoaded)
}

func (s *ExecutorSuite) TestLoadEngineInvalid() {
	s.Error(s.executor.LoadEngine(s.ctx, []byte("not wasm")))
	s.Nil(s.executor.Allocator())
}

func (s *ExecutorSuite) TestObserverInstalledOnLoad() {
	s.Require().NoError(s.executor.LoadEngine(s.ctx, testutil.EngineModule()))
	s.True(s.executor.Observers().Installed())

	_, err := s.executor.Call(s.ctx, "trigger_error")
	s.Require().NoError(err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().Len(s.events, 1)
	s.Equal(event{entities.EWarning, "a.php", 7, "boom"}, s.events[0])
}

func (s *ExecutorSuite) TestCall() {
	_, err := s.executor.Call(s.ctx, "trigger_error")
	s.ErrorIs(err, host.ErrNoEngine)

	s.Require().NoError(s.executor.LoadEngine(s.ctx, testutil.EngineModule()))
	_, err = s.executor.Call(s.ctx, "no_such_export")
	s.ErrorContains(err, "no_such_export")
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorSuite))
}

func TestExecutor_LoadAfterClose(t *testing.T) {
	ctx := context.Background()
	e, err := host.NewExecutor(ctx)
	require.NoError(t, err)
	require.NoError(t, e.Close(ctx))

	assert.ErrorIs(t, e.LoadEngine(ctx, testutil.EngineModule()), host.ErrClosed)
}
