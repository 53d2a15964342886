package butylene

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for the mapping engine's boundary operations.
var (
	signalDataFromElementStart    = capitan.NewSignal("butylene.dataFromElement.start", "element-to-object mapping beginning")
	signalDataFromElementComplete = capitan.NewSignal("butylene.dataFromElement.complete", "element-to-object mapping finished")
	signalElementFromDataStart    = capitan.NewSignal("butylene.elementFromData.start", "object-to-element mapping beginning")
	signalElementFromDataComplete = capitan.NewSignal("butylene.elementFromData.complete", "object-to-element mapping finished")
	signalSignatureResolved       = capitan.NewSignal("butylene.signature.resolved", "a signature was chosen for a target type")
	signalCacheMiss               = capitan.NewSignal("butylene.signature.cache.miss", "signature source cache miss, building candidates")
)

// Keys for typed event data.
var (
	keyTargetType   = capitan.NewStringKey("target_type")
	keyElementKind  = capitan.NewStringKey("element_kind")
	keyDuration     = capitan.NewDurationKey("duration")
	keyError        = capitan.NewErrorKey("error")
)

func emitDataFromElementStart(ctx context.Context, targetType, elementKind string) {
	capitan.Emit(ctx, signalDataFromElementStart,
		keyTargetType.Field(targetType),
		keyElementKind.Field(elementKind),
	)
}

func emitDataFromElementComplete(ctx context.Context, targetType string, duration time.Duration, err error) {
	fields := []capitan.Field{
		keyTargetType.Field(targetType),
		keyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, keyError.Field(err))
		capitan.Error(ctx, signalDataFromElementComplete, fields...)
		return
	}
	capitan.Emit(ctx, signalDataFromElementComplete, fields...)
}

func emitElementFromDataStart(ctx context.Context, targetType string) {
	capitan.Emit(ctx, signalElementFromDataStart, keyTargetType.Field(targetType))
}

func emitElementFromDataComplete(ctx context.Context, targetType string, duration time.Duration, err error) {
	fields := []capitan.Field{
		keyTargetType.Field(targetType),
		keyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, keyError.Field(err))
		capitan.Error(ctx, signalElementFromDataComplete, fields...)
		return
	}
	capitan.Emit(ctx, signalElementFromDataComplete, fields...)
}

func emitSignatureResolved(ctx context.Context, targetType string) {
	capitan.Emit(ctx, signalSignatureResolved, keyTargetType.Field(targetType))
}

func emitCacheMiss(ctx context.Context, targetType string) {
	capitan.Emit(ctx, signalCacheMiss, keyTargetType.Field(targetType))
}
