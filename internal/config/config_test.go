package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"api_url": "https://jobjeeves.example.com",
		"timeout": "90s",
		"resume": "s3://resumes/jane.pdf",
		"job_url": "https://jobs.lever.co/acme/123",
		"headers": {"X-Team": "platform"},
		"concurrency": 8,
		"s3_endpoint": "https://acct.r2.cloudflarestorage.com",
		"s3_access_key": "r2-key",
		"s3_secret_key": "r2-secret",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://jobjeeves.example.com", cfg.APIURL)
	assert.Equal(t, "90s", cfg.Timeout)
	assert.Equal(t, "s3://resumes/jane.pdf", cfg.Resume)
	assert.Equal(t, "https://jobs.lever.co/acme/123", cfg.JobURL)
	assert.Equal(t, map[string]string{"X-Team": "platform"}, cfg.Headers)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "r2-key", cfg.S3AccessKey)
	assert.Equal(t, "r2-secret", cfg.S3SecretKey)
	assert.True(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_RelativePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jobjeeves.json"), []byte(`{"json": true}`), 0644))
	t.Chdir(dir)

	cfg, err := LoadConfig("jobjeeves.json")
	require.NoError(t, err)
	assert.True(t, cfg.JSON)
}

func TestLoadConfig_Errors(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{ invalid json }`), 0644))

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{"empty path", "", "config path is empty"},
		{"missing file", "/nonexistent/path/config.json", "failed to read config file"},
		{"invalid JSON", invalid, "failed to parse config JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantMsg string
	}{
		{"empty config", Config{}, ""},
		{"defaults", Defaults(), ""},
		{"https api url", Config{APIURL: "https://api.example.com:8443"}, ""},
		{"api url without scheme", Config{APIURL: "localhost:8000"}, "api_url"},
		{"api url ftp", Config{APIURL: "ftp://example.com"}, "api_url"},
		{"job url invalid", Config{JobURL: "not a url"}, "job_url"},
		{"s3 endpoint invalid", Config{S3Endpoint: "::"}, "s3_endpoint"},
		{"s3 key pair", Config{S3AccessKey: "AKID", S3SecretKey: "secret"}, ""},
		{"s3 access key alone", Config{S3AccessKey: "AKID"}, "s3_secret_key"},
		{"s3 secret key alone", Config{S3SecretKey: "secret"}, "s3_access_key"},
		{"concurrency too high", Config{Concurrency: 64}, "concurrency"},
		{"concurrency negative", Config{Concurrency: -1}, "concurrency"},
		{"timeout garbage", Config{Timeout: "soon"}, "timeout"},
		{"timeout negative", Config{Timeout: "-5s"}, "timeout"},
		{"timeout seconds", Config{Timeout: "45"}, ""},
		{"job and job_url", Config{Job: "jd.txt", JobURL: "https://example.com/job"}, "mutually exclusive"},
		{"job_text and job", Config{JobText: "Senior Go engineer wanted", Job: "jd.txt"}, "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"2m", 2 * time.Minute, false},
		{"1m30s", 90 * time.Second, false},
		{"30", 30 * time.Second, false},
		{" 10s ", 10 * time.Second, false},
		{"0", 0, false},
		{"-1s", 0, true},
		{"forever", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeout(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeoutDuration_DefaultsWhenEmpty(t *testing.T) {
	d, err := (&Config{}).TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvAPIURL, " http://analysis.internal:8000 ")
	t.Setenv(EnvTimeout, "45s")
	t.Setenv(EnvS3Endpoint, "http://localhost:9000")
	t.Setenv(EnvS3Region, "us-east-1")
	t.Setenv(EnvS3AccessKey, "AKIDJOBJEEVES")
	t.Setenv(EnvS3SecretKey, " secret ")

	cfg := FromEnv()
	assert.Equal(t, "http://analysis.internal:8000", cfg.APIURL)
	assert.Equal(t, "45s", cfg.Timeout)
	assert.Equal(t, "http://localhost:9000", cfg.S3Endpoint)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, "AKIDJOBJEEVES", cfg.S3AccessKey)
	assert.Equal(t, "secret", cfg.S3SecretKey)
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		APIURL:      "http://localhost:8000",
		Timeout:     "2m0s",
		Resume:      "default.pdf",
		Concurrency: 4,
		Headers:     map[string]string{"X-Team": "default", "X-Env": "dev"},
		Verbose:     true,
	}

	partial := Config{
		APIURL:  "https://api.example.com",
		Headers: map[string]string{"X-Team": "platform"},
	}

	merged := partial.MergeWithDefaults(defaults)

	assert.Equal(t, "https://api.example.com", merged.APIURL)
	assert.Equal(t, "2m0s", merged.Timeout)
	assert.Equal(t, "default.pdf", merged.Resume)
	assert.Equal(t, 4, merged.Concurrency)
	assert.Equal(t, map[string]string{"X-Team": "platform", "X-Env": "dev"}, merged.Headers)
	assert.True(t, merged.Verbose)
	assert.NotContains(t, partial.Headers, "X-Env")
}

func TestMergeWithDefaults_JobSourcesAreOneSetting(t *testing.T) {
	defaults := Config{Job: "default-jd.txt"}

	fromURL := Config{JobURL: "https://example.com/job"}
	merged := fromURL.MergeWithDefaults(defaults)
	assert.Equal(t, "https://example.com/job", merged.JobURL)
	assert.Empty(t, merged.Job)
	assert.NoError(t, merged.Validate())

	empty := Config{}
	merged = empty.MergeWithDefaults(defaults)
	assert.Equal(t, "default-jd.txt", merged.Job)
}

func TestMergeWithDefaults_S3KeysAreOneSetting(t *testing.T) {
	defaults := Config{S3AccessKey: "env-key", S3SecretKey: "env-secret"}

	fromFile := Config{S3AccessKey: "file-key", S3SecretKey: "file-secret"}
	merged := fromFile.MergeWithDefaults(defaults)
	assert.Equal(t, "file-key", merged.S3AccessKey)
	assert.Equal(t, "file-secret", merged.S3SecretKey)

	empty := Config{}
	merged = empty.MergeWithDefaults(defaults)
	assert.Equal(t, "env-key", merged.S3AccessKey)
	assert.Equal(t, "env-secret", merged.S3SecretKey)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Resume: "cv.pdf", Concurrency: 2}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "cv.pdf", merged.Resume)
	assert.Equal(t, 2, merged.Concurrency)
	assert.Nil(t, merged.Headers)
}
