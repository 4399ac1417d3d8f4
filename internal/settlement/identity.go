// Package settlement consolida, entre todos os jogos, quanto cada jogador deve
// à casa ou tem a receber, somando quadrados e apostas.
package settlement

// Identity é a chave que junta o mesmo jogador entre jogos diferentes.
// Hoje são as iniciais: pessoas distintas com as mesmas iniciais caem na
// mesma linha.
type Identity string

// IdentityFunc deriva a identidade a partir das iniciais gravadas na grade e
// nas apostas. Vazio significa "sem dono".
type IdentityFunc func(initials string) Identity

// ByInitials compara as iniciais como string exata.
func ByInitials(initials string) Identity { return Identity(initials) }
