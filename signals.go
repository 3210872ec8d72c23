package atlas

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Signals for registry and resolution events.
var (
	SignalRegistryBuilt    = capitan.NewSignal("atlas.registry.built", "Registry built and frozen")
	SignalModuleRegistered = capitan.NewSignal("atlas.module.registered", "Module added to the registry")
	SignalSchemaLoaded     = capitan.NewSignal("atlas.schema.loaded", "Module schema loaded from a document")
	SignalResolveUnknown   = capitan.NewSignal("atlas.resolve.unknown", "Path resolution failed")
	SignalResolveDenied    = capitan.NewSignal("atlas.resolve.denied", "Field reference rejected by an access rule")
	SignalPayloadBound     = capitan.NewSignal("atlas.payload.bound", "Producer payload bound to a module")
)

// Keys for typed event data.
var (
	KeyModule      = capitan.NewStringKey("module")
	KeyCapability  = capitan.NewStringKey("capability")
	KeyPath        = capitan.NewStringKey("path")
	KeyTarget      = capitan.NewStringKey("target")
	KeyFingerprint = capitan.NewStringKey("fingerprint")
	KeyModuleCount = capitan.NewIntKey("module_count")
	KeyFieldCount  = capitan.NewIntKey("field_count")
	KeyError       = capitan.NewErrorKey("error")
)

// emitRegistryBuilt emits an event when a registry build succeeds.
func emitRegistryBuilt(ctx context.Context, modules int, fingerprint string) {
	capitan.Emit(ctx, SignalRegistryBuilt,
		KeyModuleCount.Field(modules),
		KeyFingerprint.Field(fingerprint),
	)
}

// emitModuleRegistered emits an event when a module joins the registry.
func emitModuleRegistered(ctx context.Context, module, capability string) {
	capitan.Emit(ctx, SignalModuleRegistered,
		KeyModule.Field(module),
		KeyCapability.Field(capability),
	)
}

// emitSchemaLoaded emits an event when a schema document parses into a module.
func emitSchemaLoaded(ctx context.Context, module string, fields int) {
	capitan.Emit(ctx, SignalSchemaLoaded,
		KeyModule.Field(module),
		KeyFieldCount.Field(fields),
	)
}

// emitResolveUnknown emits an event when a path fails to resolve.
func emitResolveUnknown(ctx context.Context, path string, err error) {
	capitan.Error(ctx, SignalResolveUnknown,
		KeyPath.Field(path),
		KeyError.Field(err),
	)
}

// emitResolveDenied emits an event when an access rule rejects a reference.
func emitResolveDenied(ctx context.Context, path string, sc ScanContext, err error) {
	capitan.Error(ctx, SignalResolveDenied,
		KeyPath.Field(path),
		KeyTarget.Field(string(sc.Target)),
		KeyError.Field(err),
	)
}

// emitPayloadBound emits an event when a producer payload decodes cleanly.
func emitPayloadBound(ctx context.Context, module string, fields int) {
	capitan.Emit(ctx, SignalPayloadBound,
		KeyModule.Field(module),
		KeyFieldCount.Field(fields),
	)
}
