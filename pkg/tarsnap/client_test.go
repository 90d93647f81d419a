package tarsnap

import (
	"context"
	"io/ioutil"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yurykabanov/snapkeep/pkg/domain"
)

// region commandRunnerMock
type commandRunnerMock struct {
	mock.Mock
}

func (m *commandRunnerMock) Run(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	called := m.Called(ctx, name, args)
	return called.Get(0).([]byte), called.Get(1).([]byte), called.Error(2)
}

// endregion

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = ioutil.Discard

	return logger
}

func testClient(runner commandRunner, options map[string]string) *Client {
	client := NewClient(discardLogger(), "tarsnap", options)
	client.runner = runner

	return client
}

func TestClient_ListArchives(t *testing.T) {
	runner := &commandRunnerMock{}

	runner.On("Run", mock.Anything, "tarsnap", []string{"--list-archives"}).
		Return([]byte("backup-docs-20240110-000000\nbackup-docs-20240106-000000\n\n"), []byte{}, nil)

	client := testClient(runner, nil)

	archives, err := client.ListArchives(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, []string{"backup-docs-20240110-000000", "backup-docs-20240106-000000"}, archives)
}

func TestClient_ListArchives_Empty(t *testing.T) {
	runner := &commandRunnerMock{}

	runner.On("Run", mock.Anything, "tarsnap", []string{"--list-archives"}).
		Return([]byte(""), []byte{}, nil)

	client := testClient(runner, nil)

	archives, err := client.ListArchives(context.Background())

	assert.Nil(t, err)
	assert.Empty(t, archives)
}

func TestClient_OptionsComeBeforeArguments(t *testing.T) {
	runner := &commandRunnerMock{}

	runner.On("Run", mock.Anything, "tarsnap", []string{
		"--cachedir", "/var/cache/tarsnap",
		"--keyfile", "/root/tarsnap.key",
		"-v",
		"--list-archives",
	}).Return([]byte(""), []byte{}, nil)

	client := testClient(runner, map[string]string{
		"keyfile":  "/root/tarsnap.key",
		"cachedir": "/var/cache/tarsnap",
		"v":        "",
	})

	_, err := client.ListArchives(context.Background())

	assert.Nil(t, err)

	runner.AssertExpectations(t)
}

func TestClient_CreateArchive(t *testing.T) {
	runner := &commandRunnerMock{}

	runner.On("Run", mock.Anything, "tarsnap", []string{
		"-c", "-f", "backup-docs-20240110-000000",
		"--exclude", "/srv/docs/tmp",
		"/srv/docs", "/etc",
	}).Return([]byte(""), []byte{}, nil)

	client := testClient(runner, nil)

	err := client.CreateArchive(context.Background(), "backup-docs-20240110-000000",
		[]string{"/srv/docs", "/etc"}, []string{"/srv/docs/tmp"})

	assert.Nil(t, err)

	runner.AssertExpectations(t)
}

func TestClient_DeleteArchive(t *testing.T) {
	runner := &commandRunnerMock{}

	runner.On("Run", mock.Anything, "tarsnap", []string{"-d", "-f", "backup-docs-20240110-000000"}).
		Return([]byte(""), []byte{}, nil)

	client := testClient(runner, nil)

	err := client.DeleteArchive(context.Background(), "backup-docs-20240110-000000")

	assert.Nil(t, err)

	runner.AssertExpectations(t)
}

func TestClient_FailureCarriesStderr(t *testing.T) {
	runner := &commandRunnerMock{}

	runner.On("Run", mock.Anything, "tarsnap", mock.Anything).
		Return([]byte(nil), []byte("tarsnap: Error reading cache directory"), errors.New("exit status 1"))

	client := testClient(runner, nil)

	_, err := client.ListArchives(context.Background())

	assert.NotNil(t, err)

	toolErr, ok := err.(*domain.ExternalToolError)
	assert.True(t, ok)
	assert.Equal(t, "tarsnap", toolErr.Tool)
	assert.Contains(t, toolErr.Stderr, "Error reading cache directory")
}
