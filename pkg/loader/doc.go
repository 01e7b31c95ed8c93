// Package loader provides component import hooks for routes.
//
// An import hook runs the first time a route needs a component that is not
// yet registered. On success the component must be registered; the router
// then instantiates it. Hooks are shared by every route naming the same
// component and are de-duplicated by the registry.
//
// Two sources are provided:
//
//	loader.Static(reg, "user-card", factory)     // in-process factory
//	s3l.Import("user-card")                      // HTML template from S3
package loader
