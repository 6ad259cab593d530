package users

type UserRepo interface {
	Upsert(user *User) error
	Delete(email string) error
	GetByEmail(email string) (*User, error)
	GetByID(ID string) (*User, error)
	GetByEmailVerificationToken(token string) (*User, error)
	List(offset, limit int) ([]*User, error)
	SetStatus(email string, status StatusType) error
	// SetEmailVerified clears the verification token when verified is true
	SetEmailVerified(email string, verified bool) error
}
