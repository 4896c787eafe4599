package bucket

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jun/gophbox/internal/store"
)

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestBackend_Key(t *testing.T) {
	assert.Equal(t, "bot/files.json", New(nil, "b", "bot").Key(store.TableFiles))
	assert.Equal(t, "folders.json", New(nil, "b", "").Key(store.TableFolders))
}

func TestBackend_ReadMissing(t *testing.T) {
	b := New(&fakeS3{objects: map[string][]byte{}}, "vault", "registry")

	_, err := b.Read(context.Background(), store.TableFiles)
	require.ErrorIs(t, err, store.ErrNotExist)
}

func TestBackend_WriteThenRead(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	b := New(client, "vault", "registry")
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, store.TableFolders, []byte(`{"version":1}`)))
	assert.Contains(t, client.objects, "vault/registry/folders.json")

	got, err := b.Read(ctx, store.TableFolders)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got))
}
