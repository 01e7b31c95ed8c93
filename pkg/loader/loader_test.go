package loader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vnav/pkg/component"
)

type fakeS3 struct {
	objects map[string]string
	calls   atomic.Int32
	err     error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

func TestS3LoaderRegistersTemplate(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"ui/components/user-card.html": "<h2>User</h2>",
	}}
	reg := component.NewRegistry()
	l := NewS3(client, "ui", reg, WithPrefix("components"))

	assert.Equal(t, "components/user-card.html", l.Key("user-card"))
	require.NoError(t, reg.Load(context.Background(), "user-card", l.Import("user-card")))

	el, err := reg.Instantiate("user-card")
	require.NoError(t, err)
	assert.Equal(t, "<user-card><h2>User</h2></user-card>", el.HTML())

	require.NoError(t, reg.Load(context.Background(), "user-card", l.Import("user-card")))
	assert.Equal(t, int32(1), client.calls.Load(), "registered components are not fetched again")
}

func TestS3LoaderNotFound(t *testing.T) {
	reg := component.NewRegistry()
	l := NewS3(&fakeS3{}, "ui", reg)

	err := l.Import("missing")(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "s3://ui/missing.html")
	assert.False(t, reg.IsRegistered("missing"))
}

func TestS3LoaderTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	l := NewS3(&fakeS3{err: boom}, "ui", component.NewRegistry())

	err := l.Import("x")(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestS3LoaderMaxSize(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"ui/big.html": strings.Repeat("a", 64)}}
	reg := component.NewRegistry()
	l := NewS3(client, "ui", reg, WithMaxSize(16))

	err := l.Import("big")(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
	assert.False(t, reg.IsRegistered("big"))
}

func TestStatic(t *testing.T) {
	reg := component.NewRegistry()
	hook := Static(reg, "badge", component.Template("badge", "new"))

	require.NoError(t, hook(context.Background()))
	assert.True(t, reg.IsRegistered("badge"))
}

func TestChain(t *testing.T) {
	reg := component.NewRegistry()
	s3l := NewS3(&fakeS3{}, "ui", reg)
	hook := Chain(s3l.Import("badge"), Static(reg, "badge", component.Template("badge", "")))

	require.NoError(t, hook(context.Background()))
	assert.True(t, reg.IsRegistered("badge"))

	assert.ErrorIs(t, Chain()(context.Background()), ErrNotFound)

	boom := errors.New("boom")
	called := false
	stop := Chain(
		func(context.Context) error { return boom },
		func(context.Context) error { called = true; return nil },
	)
	assert.ErrorIs(t, stop(context.Background()), boom)
	assert.False(t, called)
}

func TestWithTimeout(t *testing.T) {
	hook := WithTimeout(10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := hook(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewS3Client(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", dir+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", dir+"/credentials")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	c, err := NewS3Client(context.Background(), "eu-central-1", "http://localhost:9000")
	require.NoError(t, err)
	opts := c.Options()
	assert.Equal(t, "eu-central-1", opts.Region)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
}

func TestNewS3ClientKeepsConfiguredRegion(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", dir+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", dir+"/credentials")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "us-west-2")

	c, err := NewS3Client(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", c.Options().Region)
	assert.False(t, c.Options().UsePathStyle)
}

func TestNewS3ClientMissingProfile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", dir+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", dir+"/credentials")
	t.Setenv("AWS_PROFILE", "does-not-exist")

	_, err := NewS3Client(context.Background(), "eu-central-1", "")
	assert.Error(t, err)
}
