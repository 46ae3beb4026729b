package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openbingo/bingo-server/models"
)

// DBStore is the Postgres-backed Store. Number sets live in JSON
// columns; read-modify-write operations run in a transaction with a row
// lock so the atomicity contract holds against concurrent callers.
type DBStore struct {
	db *gorm.DB
}

type userRow struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex"`
	Password  string
	Wallet    int64
	CreatedAt time.Time
}

func (userRow) TableName() string { return "users" }

type gameRow struct {
	ID            uint   `gorm:"primaryKey"`
	Code          string `gorm:"uniqueIndex"`
	Stake         int64
	Active        bool `gorm:"index"`
	CalledNumbers datatypes.JSON
	CurrentCall   int
	Countdown     int
	CreatedAt     time.Time
	EndedAt       *time.Time
}

func (gameRow) TableName() string { return "games" }

type playerRow struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint `gorm:"index:idx_players_user_game,unique"`
	GameID        uint `gorm:"index:idx_players_user_game,unique"`
	CardNumbers   datatypes.JSON
	MarkedNumbers datatypes.JSON
	HasBingo      bool
	BoardNumber   int
}

func (playerRow) TableName() string { return "players" }

// NewDBStore connects to Postgres and migrates the schema.
func NewDBStore(dsn string) (*DBStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&userRow{}, &gameRow{}, &playerRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &DBStore{db: db}, nil
}

// -------------------- User operations --------------------

func (s *DBStore) CreateUser(ctx context.Context, username, password string, wallet int64) (*models.User, error) {
	row := userRow{Username: username, Password: password, Wallet: wallet}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return rowToUser(&row), nil
}

func (s *DBStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translateUserErr(err)
	}
	return rowToUser(&row), nil
}

func (s *DBStore) AdjustWallet(ctx context.Context, userID uint, delta int64) (*models.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, userID).Error; err != nil {
			return translateUserErr(err)
		}
		if row.Wallet+delta < 0 {
			return models.ErrInsufficientFunds
		}
		row.Wallet += delta
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return rowToUser(&row), nil
}

// -------------------- Game operations --------------------

func (s *DBStore) CreateGame(ctx context.Context, code string, stake int64, countdown int) (*models.Game, error) {
	row := gameRow{
		Code:          code,
		Stake:         stake,
		Active:        true,
		CalledNumbers: mustJSON([]int{}),
		Countdown:     countdown,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrDuplicateGameID
		}
		return nil, err
	}
	return rowToGame(&row)
}

func (s *DBStore) GetGame(ctx context.Context, id uint) (*models.Game, error) {
	var row gameRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translateGameErr(err)
	}
	return rowToGame(&row)
}

func (s *DBStore) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	var row gameRow
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&row).Error; err != nil {
		return nil, translateGameErr(err)
	}
	return rowToGame(&row)
}

func (s *DBStore) ActiveGames(ctx context.Context) ([]*models.Game, error) {
	var rows []gameRow
	if err := s.db.WithContext(ctx).Where("active = ?", true).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Game, 0, len(rows))
	for i := range rows {
		g, err := rowToGame(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *DBStore) AppendCall(ctx context.Context, gameID uint, number, countdown int) (*models.Game, error) {
	var row gameRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, gameID).Error; err != nil {
			return translateGameErr(err)
		}
		if !row.Active {
			return models.ErrGameInactive
		}
		var called []int
		if err := json.Unmarshal(row.CalledNumbers, &called); err != nil {
			return err
		}
		called = append(called, number)
		row.CalledNumbers = mustJSON(called)
		row.CurrentCall = number
		row.Countdown = countdown
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return rowToGame(&row)
}

func (s *DBStore) EndGame(ctx context.Context, gameID uint) (*models.Game, error) {
	var row gameRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, gameID).Error; err != nil {
			return translateGameErr(err)
		}
		if !row.Active {
			return nil
		}
		row.Active = false
		now := time.Now()
		row.EndedAt = &now
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return rowToGame(&row)
}

// -------------------- Player operations --------------------

func (s *DBStore) CreatePlayer(ctx context.Context, userID, gameID uint, card models.Card, boardNumber int) (*models.Player, error) {
	row := playerRow{
		UserID:        userID,
		GameID:        gameID,
		CardNumbers:   mustJSON(card),
		MarkedNumbers: mustJSON([]int{}),
		BoardNumber:   boardNumber,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrAlreadyJoined
		}
		return nil, err
	}
	return rowToPlayer(&row)
}

func (s *DBStore) GetPlayer(ctx context.Context, id uint) (*models.Player, error) {
	var row playerRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translatePlayerErr(err)
	}
	return rowToPlayer(&row)
}

func (s *DBStore) GetPlayerByUserAndGame(ctx context.Context, userID, gameID uint) (*models.Player, error) {
	var row playerRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		First(&row).Error
	if err != nil {
		return nil, translatePlayerErr(err)
	}
	return rowToPlayer(&row)
}

func (s *DBStore) PlayersByGame(ctx context.Context, gameID uint) ([]*models.Player, error) {
	var rows []playerRow
	if err := s.db.WithContext(ctx).Where("game_id = ?", gameID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Player, 0, len(rows))
	for i := range rows {
		p, err := rowToPlayer(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *DBStore) MarkNumber(ctx context.Context, playerID uint, number int) (*models.Player, error) {
	var row playerRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, playerID).Error; err != nil {
			return translatePlayerErr(err)
		}
		var card models.Card
		if err := json.Unmarshal(row.CardNumbers, &card); err != nil {
			return err
		}
		if !card.Contains(number) {
			return nil
		}
		var marked []int
		if err := json.Unmarshal(row.MarkedNumbers, &marked); err != nil {
			return err
		}
		for _, m := range marked {
			if m == number {
				return nil
			}
		}
		marked = append(marked, number)
		row.MarkedNumbers = mustJSON(marked)
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return rowToPlayer(&row)
}

func (s *DBStore) SetBingo(ctx context.Context, playerID uint) (*models.Player, error) {
	var row playerRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, playerID).Error; err != nil {
			return translatePlayerErr(err)
		}
		if row.HasBingo {
			return nil
		}
		row.HasBingo = true
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return rowToPlayer(&row)
}

// -------------------- Row conversion --------------------

func rowToUser(r *userRow) *models.User {
	return &models.User{
		ID:        r.ID,
		Username:  r.Username,
		Password:  r.Password,
		Wallet:    r.Wallet,
		CreatedAt: r.CreatedAt,
	}
}

func rowToGame(r *gameRow) (*models.Game, error) {
	var called []int
	if err := json.Unmarshal(r.CalledNumbers, &called); err != nil {
		return nil, err
	}
	return &models.Game{
		ID:            r.ID,
		Code:          r.Code,
		Stake:         r.Stake,
		Active:        r.Active,
		CalledNumbers: called,
		CurrentCall:   r.CurrentCall,
		Countdown:     r.Countdown,
		CreatedAt:     r.CreatedAt,
		EndedAt:       r.EndedAt,
	}, nil
}

func rowToPlayer(r *playerRow) (*models.Player, error) {
	var card models.Card
	if err := json.Unmarshal(r.CardNumbers, &card); err != nil {
		return nil, err
	}
	var marked []int
	if err := json.Unmarshal(r.MarkedNumbers, &marked); err != nil {
		return nil, err
	}
	return &models.Player{
		ID:          r.ID,
		UserID:      r.UserID,
		GameID:      r.GameID,
		Card:        card,
		Marked:      marked,
		HasBingo:    r.HasBingo,
		BoardNumber: r.BoardNumber,
	}, nil
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}

func translateUserErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrUserNotFound
	}
	return err
}

func translateGameErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrGameNotFound
	}
	return err
}

func translatePlayerErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrPlayerNotFound
	}
	return err
}
