// Package images extracts uploaded image archives into a per-upload Workspace and
// prepares individual images for the asset host.
package images
