// Package model содержит модели релизов.
package model

import "fmt"

// ReleaseKind представляет тип релиза
type ReleaseKind string

const (
	ReleaseKindAlbum  ReleaseKind = "album"
	ReleaseKindSingle ReleaseKind = "single"
)

// ReleaseKinds возвращает отслеживаемые типы релизов в порядке обработки
func ReleaseKinds() []ReleaseKind {
	return []ReleaseKind{ReleaseKindAlbum, ReleaseKindSingle}
}

// IsValid проверяет валидность типа релиза
func (k ReleaseKind) IsValid() bool {
	switch k {
	case ReleaseKindAlbum, ReleaseKindSingle:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление типа релиза
func (k ReleaseKind) String() string {
	return string(k)
}

// ReleaseSnapshot представляет последний релиз одного типа у артиста
type ReleaseSnapshot struct {
	Kind        ReleaseKind `json:"kind"`
	Name        string      `json:"name"`
	ReleaseDate string      `json:"release_date"`
	Artists     []string    `json:"artists"`
}

// EmptySnapshot возвращает пустой снимок: у артиста нет релизов этого типа
func EmptySnapshot(kind ReleaseKind) ReleaseSnapshot {
	return ReleaseSnapshot{Kind: kind, Artists: []string{}}
}

// IsEmpty проверяет, что снимок пустой
func (s ReleaseSnapshot) IsEmpty() bool {
	return s.Name == ""
}

// String возвращает краткое описание снимка для логов
func (s ReleaseSnapshot) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("%s: <none>", s.Kind)
	}
	return fmt.Sprintf("%s: %q (%s)", s.Kind, s.Name, s.ReleaseDate)
}

// withKind проставляет тип для снимков, сохраненных без него
func (s ReleaseSnapshot) withKind(kind ReleaseKind) ReleaseSnapshot {
	if s.Kind == "" {
		s.Kind = kind
	}
	if s.Artists == nil {
		s.Artists = []string{}
	}
	return s
}

// SnapshotPair содержит снимки альбома и сингла одного артиста
type SnapshotPair struct {
	Album  ReleaseSnapshot `json:"album"`
	Single ReleaseSnapshot `json:"single"`
}

// EmptySnapshotPair возвращает пару пустых снимков
func EmptySnapshotPair() SnapshotPair {
	return SnapshotPair{
		Album:  EmptySnapshot(ReleaseKindAlbum),
		Single: EmptySnapshot(ReleaseKindSingle),
	}
}

// Get возвращает снимок указанного типа
func (p SnapshotPair) Get(kind ReleaseKind) ReleaseSnapshot {
	if kind == ReleaseKindSingle {
		return p.Single
	}
	return p.Album
}

// ChangeRecord описывает новый релиз, найденный при проверке
type ChangeRecord struct {
	ArtistID   string          `json:"artist_id"`
	ArtistName string          `json:"artist_name"`
	Kind       ReleaseKind     `json:"kind"`
	Snapshot   ReleaseSnapshot `json:"snapshot"`
}

// Candidate представляет результат поиска артиста в каталоге
type Candidate struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// Artist возвращает кандидата как отслеживаемого артиста
func (c Candidate) Artist() MonitoredArtist {
	return MonitoredArtist{ID: c.ID, Name: c.Name}
}

// Credential представляет bearer-токен каталога, действующий в рамках одного запуска
type Credential struct {
	AccessToken string
	TokenType   string
}

// AuthorizationHeader возвращает значение заголовка Authorization
func (c Credential) AuthorizationHeader() string {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + c.AccessToken
}
