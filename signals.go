package strongbox

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for pipeline events.
var (
	SignalPipelineCreated = capitan.NewSignal("strongbox.pipeline.created", "Pipeline instantiated")
	SignalEncryptStart    = capitan.NewSignal("strongbox.encrypt.start", "Encrypt operation beginning")
	SignalEncryptComplete = capitan.NewSignal("strongbox.encrypt.complete", "Encrypt operation finished")
	SignalDecryptStart    = capitan.NewSignal("strongbox.decrypt.start", "Decrypt operation beginning")
	SignalDecryptComplete = capitan.NewSignal("strongbox.decrypt.complete", "Decrypt operation finished")
)

// Keys for typed event data.
var (
	KeyContentType   = capitan.NewStringKey("content_type")
	KeyCipher        = capitan.NewStringKey("cipher")
	KeyPlaintextSize = capitan.NewIntKey("plaintext_size")
	KeyTokenSize     = capitan.NewIntKey("token_size")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
)

// emitPipelineCreated emits an event when a Strongbox is created.
func emitPipelineCreated(ctx context.Context, contentType string, cipher CipherID) {
	capitan.Emit(ctx, SignalPipelineCreated,
		KeyContentType.Field(contentType),
		KeyCipher.Field(string(cipher)),
	)
}

// emitEncryptStart emits an event when an encrypt begins.
func emitEncryptStart(ctx context.Context, contentType string, cipher CipherID) {
	capitan.Emit(ctx, SignalEncryptStart,
		KeyContentType.Field(contentType),
		KeyCipher.Field(string(cipher)),
	)
}

// emitEncryptComplete emits an event when an encrypt finishes.
func emitEncryptComplete(ctx context.Context, contentType string, cipher CipherID, tokenSize int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyCipher.Field(string(cipher)),
		KeyTokenSize.Field(tokenSize),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncryptComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncryptComplete, fields...)
	}
}

// emitDecryptStart emits an event when a decrypt begins.
func emitDecryptStart(ctx context.Context, contentType string, tokenSize int) {
	capitan.Emit(ctx, SignalDecryptStart,
		KeyContentType.Field(contentType),
		KeyTokenSize.Field(tokenSize),
	)
}

// emitDecryptComplete emits an event when a decrypt finishes.
func emitDecryptComplete(ctx context.Context, contentType string, cipher CipherID, plaintextSize int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyCipher.Field(string(cipher)),
		KeyPlaintextSize.Field(plaintextSize),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecryptComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecryptComplete, fields...)
	}
}
