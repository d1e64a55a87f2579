package model

// Genre is a reference entity used to classify plays.  Genre names
// are unique.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
}

// Actor is a reference entity describing a performer.  Actors are
// linked to plays through the play_actors join table.
type Actor struct {
	ID        uint64 // actors.id
	FirstName string // actors.first_name
	LastName  string // actors.last_name
}

// FullName returns the actor's display name.
func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Play represents a stage production.  A play can belong to many
// genres and feature many actors.  Plays carry no business rules
// beyond referential integrity; they exist so performances have
// something to schedule.
type Play struct {
	ID          uint64  // plays.id
	Title       string  // plays.title
	Description string  // plays.description
	Genres      []Genre // via play_genres
	Actors      []Actor // via play_actors
}
