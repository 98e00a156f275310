// README: Common identifier type shared across modules.
package types

type ID string

// IDPtr returns a pointer to a copy of id.
func IDPtr(id ID) *ID {
	return &id
}
