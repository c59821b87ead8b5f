// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Services receive dependencies through constructor injection and apply
// transactional boundaries when operations span multiple repositories. They
// depend on domain entities and repository interfaces, never on specific
// infrastructure implementations.
package service
