package security

import "strings"

// destructiveStems are checked against the user's question before the
// generator is ever invoked. Stems rather than full words so conjugated
// Spanish forms ("borra", "borrar", "bórralo" after lowering) all match.
var destructiveStems = []string{
	// Spanish
	"borra", "elimina", "cambia", "actualiza", "modifica",
	"limpia", "vacia", "vacía", "remueve", "quita",
	// English
	"delete", "drop", "update", "truncate", "clear",
	"remove", "wipe", "erase",
}

// ScanDestructiveIntent reports whether a question asks to delete or modify
// data. It short-circuits the pipeline before generation: a cheap first link
// in the defense chain, independent of the query validator.
func ScanDestructiveIntent(question string) (bool, string) {
	lower := strings.ToLower(question)
	for _, stem := range destructiveStems {
		if strings.Contains(lower, stem) {
			return true, stem
		}
	}
	return false, ""
}
