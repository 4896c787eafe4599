package secret

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSMClient struct {
	params map[string]string
	err    error
}

func (f *fakeSSMClient) GetParameter(_ context.Context, input *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !aws.ToBool(input.WithDecryption) {
		return nil, errors.New("expected decryption to be requested")
	}
	val, ok := f.params[*input.Name]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{Message: aws.String("missing")}
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:  input.Name,
			Value: aws.String(val),
		},
	}, nil
}

func TestSSMResolver_GetSecret_Success(t *testing.T) {
	resolver := NewSSMResolver(&fakeSSMClient{
		params: map[string]string{
			WebhookSecretParam: "hook-value",
		},
	})

	val, err := resolver.GetSecret(context.Background(), WebhookSecretParam)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "hook-value" {
		t.Fatalf("expected %q, got %q", "hook-value", val)
	}
}

func TestSSMResolver_GetSecret_NotFound(t *testing.T) {
	resolver := NewSSMResolver(&fakeSSMClient{params: map[string]string{}})

	_, err := resolver.GetSecret(context.Background(), "/gophbox/nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSSMResolver_GetSecret_ClientError(t *testing.T) {
	resolver := NewSSMResolver(&fakeSSMClient{err: errors.New("throttled")})

	_, err := resolver.GetSecret(context.Background(), JWTSecretParam)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a non-NotFound error, got %v", err)
	}
}

func TestEnvResolver_GetSecret(t *testing.T) {
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "env-hook")

	val, err := NewEnvResolver().GetSecret(context.Background(), WebhookSecretParam)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "env-hook" {
		t.Fatalf("expected %q, got %q", "env-hook", val)
	}
}

func TestEnvResolver_GetSecret_NotSet(t *testing.T) {
	resolver := &EnvResolver{lookup: func(string) (string, bool) { return "", false }}

	_, err := resolver.GetSecret(context.Background(), JWTSecretParam)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnvVarFor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{JWTSecretParam, "JWT_SECRET"},
		{WebhookSecretParam, "TELEGRAM_WEBHOOK_SECRET"},
		{"plain-name", "PLAIN_NAME"},
	}

	for _, tc := range tests {
		got := EnvVarFor(tc.input)
		if got != tc.expected {
			t.Errorf("EnvVarFor(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
