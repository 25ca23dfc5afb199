package config

// Storage and recognizer backend identifiers accepted in config files.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"

	RecognizerBackendSniff       = "sniff"
	RecognizerBackendRekognition = "rekognition"
)

const (
	defaultDataDir         = "~/.local/share/lens"
	defaultObjectsDir      = "~/.local/share/lens/objects"
	defaultLogDir          = "~/.local/share/lens/logs"
	defaultAPIBind         = "127.0.0.1:7414"
	defaultMaxBlobMiB      = 15
	defaultMaxLabels       = 32
	defaultMinConfidence   = 55
	defaultCallbackTimeout = 10
	defaultUploadWindow    = 300
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			ObjectsDir: defaultObjectsDir,
			LogDir:     defaultLogDir,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Storage: Storage{
			Backend: StorageBackendLocal,
		},
		Recognizer: Recognizer{
			Backend:       RecognizerBackendSniff,
			MaxBlobMiB:    defaultMaxBlobMiB,
			MaxLabels:     defaultMaxLabels,
			MinConfidence: defaultMinConfidence,
		},
		Callback: Callback{
			RequestTimeout: defaultCallbackTimeout,
		},
		Workflow: Workflow{
			UploadWindow: defaultUploadWindow,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
