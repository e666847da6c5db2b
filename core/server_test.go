package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drharryhe/hasmysql/common/hconf"
	"github.com/drharryhe/hasmysql/common/herrors"
)

type fakeConnector struct {
	stop      chan struct{}
	listenErr *herrors.Error
	shutdown  bool
}

func (this *fakeConnector) Plugins() []IRoutePlugin { return nil }

func (this *fakeConnector) Routes() []*Route { return nil }

func (this *fakeConnector) Install(p IRoutePlugin) *herrors.Error { return nil }

func (this *fakeConnector) Listen() *herrors.Error {
	if this.listenErr != nil {
		return this.listenErr
	}
	<-this.stop
	return nil
}

func (this *fakeConnector) Shutdown() {
	this.shutdown = true
	close(this.stop)
}

func TestNewServer(t *testing.T) {
	conf, err := hconf.Parse("test.toml", []byte(`
LogOutputs = ["console"]

[Server]
MaxProcs = 2
`))
	require.Nil(t, err)

	s, err := NewServer(conf)
	require.Nil(t, err)
	assert.Equal(t, 2, s.conf.MaxProcs)
	assert.Equal(t, conf, s.Conf())
	assert.False(t, s.Config().GetDisabled())

	_, err = NewServer(nil)
	require.NotNil(t, err)
}

func TestServerStartShutdown(t *testing.T) {
	conf, err := hconf.Parse("test.toml", []byte(`LogOutputs = ["console"]`))
	require.Nil(t, err)
	s, err := NewServer(conf)
	require.Nil(t, err)

	c := &fakeConnector{stop: make(chan struct{})}
	done := make(chan struct{})
	go func() {
		s.Start(c)
		close(done)
	}()

	s.Shutdown()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, c.shutdown)
}

func TestServerStopsWhenListenFails(t *testing.T) {
	conf, err := hconf.Parse("test.toml", []byte(`LogOutputs = ["console"]`))
	require.Nil(t, err)
	s, err := NewServer(conf)
	require.Nil(t, err)

	c := &fakeConnector{
		stop:      make(chan struct{}),
		listenErr: herrors.ErrSysInternal.New("address already in use"),
	}
	done := make(chan struct{})
	go func() {
		s.Start(c)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, c.shutdown)
}
