package churches

type Repo interface {
	Upsert(church *Church) error
	Delete(churchID string) error
	Get(churchID string) (*Church, error)
	GetByInvitationCode(code string) (*Church, error)
	List(offset, limit int) ([]*Church, error)
}
