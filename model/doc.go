// Package model defines the entities owned by the content approval engine:
// content items with their versions, audit actions, comments and review
// links, approval workflow templates and user notifications.
//
// Entities are plain data. Every service hands out copies (see
// ContentItem.Clone) so callers never share state with the engine.
package model
