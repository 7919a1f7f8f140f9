/*
Package ports defines the interfaces between the Reel engine and its
external collaborators: graph storage, save-slot persistence, condition
evaluation, and the world systems (presentation, variables, inventory)
that nodes act upon. Adapters implement these; the engine depends only on
the interfaces.
*/
package ports
