// Package ports declares the interfaces the music player use cases depend on.
package ports

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . Presenter,VoiceStateProvider,SearchResolver,MetadataProvider
