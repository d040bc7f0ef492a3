package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInviteNotFound = errors.New("partner invite not found")
)

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, userId int, user User) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)

	CreateInvite(ctx context.Context, code string, inviterUserId int) error
	GetInvite(ctx context.Context, code string) (PartnerInvite, error)
	// AcceptInvite links both users mutually and marks the invite accepted,
	// all in a single transaction.
	AcceptInvite(ctx context.Context, code string, inviterUserId int, accepterUserId int) error
	// UnlinkPartners clears partner_id on both sides in a single transaction.
	UnlinkPartners(ctx context.Context, userId int, partnerId int) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

const userColumns = "id, uid, name, email, partner_id, color"

func (u *RepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, name, email, color) VALUES (?, ?, ?, ?)`
	result, err := u.db.ExecContext(ctx, query, user.Uid, user.Name, user.Email, user.Color)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(id), nil
}

func scanUser(row *sql.Row) (User, error) {
	var user User
	var partnerId sql.NullInt64
	err := row.Scan(&user.Id, &user.Uid, &user.Name, &user.Email, &partnerId, &user.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to scan user: %v", err)
		return User{}, err
	}
	if partnerId.Valid {
		id := int(partnerId.Int64)
		user.PartnerId = &id
	}
	return user, nil
}

func (u *RepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = ?", userColumns)
	return scanUser(u.db.QueryRowContext(ctx, query, id))
}

func (u *RepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE uid = ?", userColumns)
	return scanUser(u.db.QueryRowContext(ctx, query, uid))
}

func (u *RepoImpl) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	query := `UPDATE users SET name = ?, email = ?, color = ? WHERE id = ?`
	result, err := u.db.ExecContext(ctx, query, user.Name, user.Email, user.Color, userId)
	if err != nil {
		log.Errorf("failed to update user: %v", err)
		return User{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return User{}, err
	}
	if rowsAffected == 0 {
		log.Infof("no rows affected updating user %d", userId)
		return User{}, ErrUserNotFound
	}
	return u.GetUser(ctx, userId)
}

func (u *RepoImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	query := fmt.Sprintf("SELECT %s FROM users ORDER BY id", userColumns)
	rows, err := u.db.QueryContext(ctx, query)
	if err != nil {
		log.Errorf("failed to get users: %v", err)
		return nil, err
	}
	defer rows.Close()
	users := make([]User, 0, 2)
	for rows.Next() {
		var user User
		var partnerId sql.NullInt64
		if err := rows.Scan(&user.Id, &user.Uid, &user.Name, &user.Email, &partnerId, &user.Color); err != nil {
			log.Errorf("failed to scan user: %v", err)
			return nil, err
		}
		if partnerId.Valid {
			id := int(partnerId.Int64)
			user.PartnerId = &id
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over rows: %v", err)
		return nil, err
	}
	return users, nil
}

func (u *RepoImpl) CreateInvite(ctx context.Context, code string, inviterUserId int) error {
	query := `INSERT INTO partner_invites (code, inviter_user_id) VALUES (?, ?)`
	if _, err := u.db.ExecContext(ctx, query, code, inviterUserId); err != nil {
		log.Errorf("failed to create partner invite: %v", err)
		return err
	}
	return nil
}

func (u *RepoImpl) GetInvite(ctx context.Context, code string) (PartnerInvite, error) {
	query := `SELECT code, inviter_user_id, created_at, accepted_at FROM partner_invites WHERE code = ?`
	var invite PartnerInvite
	var createdAt string
	var acceptedAt sql.NullString
	err := u.db.QueryRowContext(ctx, query, code).
		Scan(&invite.Code, &invite.InviterUserId, &createdAt, &acceptedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return PartnerInvite{}, ErrInviteNotFound
	} else if err != nil {
		log.Errorf("failed to get partner invite: %v", err)
		return PartnerInvite{}, err
	}
	if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		invite.CreatedAt = t
	}
	if acceptedAt.Valid {
		if t, err := time.Parse("2006-01-02 15:04:05", acceptedAt.String); err == nil {
			invite.AcceptedAt = &t
		}
	}
	return invite, nil
}

func (u *RepoImpl) AcceptInvite(ctx context.Context, code string, inviterUserId int, accepterUserId int) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE users SET partner_id = ? WHERE id = ?", accepterUserId, inviterUserId); err != nil {
		log.Errorf("failed to link inviter: %v", err)
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE users SET partner_id = ? WHERE id = ?", inviterUserId, accepterUserId); err != nil {
		log.Errorf("failed to link accepter: %v", err)
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE partner_invites SET accepted_at = datetime('now') WHERE code = ?", code); err != nil {
		log.Errorf("failed to mark invite accepted: %v", err)
		return err
	}
	return tx.Commit()
}

func (u *RepoImpl) UnlinkPartners(ctx context.Context, userId int, partnerId int) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE users SET partner_id = NULL WHERE id = ?", userId); err != nil {
		log.Errorf("failed to unlink user %d: %v", userId, err)
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE users SET partner_id = NULL WHERE id = ?", partnerId); err != nil {
		log.Errorf("failed to unlink partner %d: %v", partnerId, err)
		return err
	}
	return tx.Commit()
}
