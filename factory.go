package ecs

// factory mirrors the teacher's single global factory instance
// (api.go/factory.go Factory{NewStorage, NewQuery, NewCursor,
// FactoryNewComponent, FactoryNewCache}), narrowed to this module's one
// remaining construction choice: most constructors here are plain
// exported functions (NewWorld, NewEntityManager, RegisterComponent, ...)
// rather than factory methods, since nothing else in this module takes a
// schema or needs a shared factory-level default.
type factory struct{}

// Factory is the global factory instance, kept for parity with the
// teacher's exported Factory value.
var Factory factory

// NewWorld constructs a world with the package-default scheduler config.
func (f factory) NewWorld() *World {
	return NewWorld()
}

// NewWorldWithConfig constructs a world with an overridden scheduler config.
func (f factory) NewWorldWithConfig(cfg SchedulerConfig) *World {
	return NewWorld().WithConfig(cfg)
}
