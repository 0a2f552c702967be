package storage

import (
	"context"
	"errors"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/google/uuid"
)

var (
	// ErrNotFound — запись не найдена (профиль, продукт, отчёт)
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict — plan_version не совпал с ожидаемым
	ErrVersionConflict = errors.New("plan version conflict")

	// ErrUnavailable — хранилище не ответило (таймаут, обрыв соединения).
	// Никогда не заменяется пустым результатом.
	ErrUnavailable = apperr.ErrStorageUnavailable
)

// DefaultUserID — пользователь, к которому относятся запросы при AUTH_MODE=none
const DefaultUserID = "default"

const (
	EventKindFood   = "food"
	EventKindCardio = "cardio"
)

const (
	GoalModeCut      = "cut"
	GoalModeMaintain = "maintain"
	GoalModeBulk     = "bulk"
)

// Profile — профиль пользователя и его настройки плана
type Profile struct {
	UserID           string // идентификатор от identity-провайдера (JWT sub)
	DisplayName      string
	MealCount        int // 0 пока план не сгенерирован
	DailyCalorieGoal int
	DailyProteinGoal *int
	PlanVersion      int
	BodyStats
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BodyStats — антропометрия и цель пользователя; nil — не указано
type BodyStats struct {
	Age             *int
	HeightCm        *float64
	CurrentWeightKg *float64
	TargetWeightKg  *float64
	GoalMode        *string // cut | maintain | bulk
}

// Storage — интерфейс для работы с профилями
type Storage interface {
	// ListProfiles возвращает все профили (для планировщика напоминаний)
	ListProfiles(ctx context.Context) ([]Profile, error)

	// GetProfile возвращает профиль по user_id, ErrNotFound если его нет
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// EnsureProfile создаёт профиль при регистрации или обновляет display_name.
	// Настройки плана здесь не меняются.
	EnsureProfile(ctx context.Context, userID string, displayName string) (*Profile, error)

	// UpdateBodyStats меняет только переданные (не nil) поля, ErrNotFound если профиля нет
	UpdateBodyStats(ctx context.Context, userID string, stats BodyStats) (*Profile, error)

	// Close закрывает соединение (для Postgres)
	Close() error
}

// Backend — полный набор хранилищ одной реализации (memory или postgres)
type Backend interface {
	Storage
	GetPlansStorage() PlansStorage
	GetConsumptionStorage() ConsumptionStorage
	GetFoodsStorage() FoodsStorage
	GetNotificationsStorage() NotificationsStorage
	GetReportsStorage() ReportsStorage
	GetWeightStorage() WeightStorage
}

// PlanSettings — настройки, из которых сгенерирован план
type PlanSettings struct {
	MealCount        int
	DailyCalorieGoal int
	DailyProteinGoal *int
}

// MealTarget — цель по одному приёму пищи
type MealTarget struct {
	UserID         string
	SlotNumber     int
	Label          string
	TargetCalories int
	TargetProtein  *int
	CreatedAt      time.Time
}

// MealTargetUpsert — новая строка плана
type MealTargetUpsert struct {
	SlotNumber     int
	Label          string
	TargetCalories int
	TargetProtein  *int
}

// PlansStorage — интерфейс для работы с планом (meal_targets)
type PlansStorage interface {
	// ListTargets возвращает цели пользователя, отсортированные по slot_number
	ListTargets(ctx context.Context, userID string) ([]MealTarget, error)

	// ReplaceAll атомарно заменяет все цели пользователя и обновляет настройки профиля.
	// expectedVersion == nil — last write wins; иначе при несовпадении ErrVersionConflict.
	// Возвращает новую plan_version и записанные строки.
	ReplaceAll(ctx context.Context, userID string, settings PlanSettings, targets []MealTargetUpsert, expectedVersion *int) (int, []MealTarget, error)
}

// ConsumptionEvent — запись журнала питания/кардио (append-only)
type ConsumptionEvent struct {
	ID            uuid.UUID
	UserID        string
	OccurredAt    time.Time
	LogDate       time.Time // календарный день (UTC midnight), вычисляется при записи
	Kind          string    // food | cardio
	SlotNumber    *int
	FoodID        *uuid.UUID
	Descriptor    string
	Quantity      float64
	Unit          string
	Calories      int
	Protein       *int
	CardioMinutes *int
	MetPlan       bool
}

// DayCount — количество событий за день (heatmap)
type DayCount struct {
	Date  time.Time
	Count int
}

// ConsumptionStorage — интерфейс для журнала потребления
type ConsumptionStorage interface {
	// AppendEvent добавляет событие; ID генерируется, если пустой
	AppendEvent(ctx context.Context, event *ConsumptionEvent) error

	// ListEventsByDate возвращает события за день, по occurred_at, id
	ListEventsByDate(ctx context.Context, userID string, date time.Time) ([]ConsumptionEvent, error)

	// ListEventsInRange возвращает события за период [from, to] включительно
	ListEventsInRange(ctx context.Context, userID string, from, to time.Time) ([]ConsumptionEvent, error)

	// DistinctLogDates возвращает различные даты с событиями <= onOrBefore, по убыванию, не больше limit
	DistinctLogDates(ctx context.Context, userID string, onOrBefore time.Time, limit int) ([]time.Time, error)

	// DailyEventCounts возвращает количество событий по дням за период (только дни с событиями)
	DailyEventCounts(ctx context.Context, userID string, from, to time.Time) ([]DayCount, error)

	// AdherenceDates возвращает даты, где пользователь отметил met_plan, по убыванию
	AdherenceDates(ctx context.Context, userID string, limit int) ([]time.Time, error)
}

// WeightEntry — запись журнала веса (append-only, несколько записей в день допустимы)
type WeightEntry struct {
	ID        uuid.UUID
	UserID    string
	LogDate   time.Time // календарный день (UTC midnight)
	WeightKg  float64
	CreatedAt time.Time
}

// WeightStorage — интерфейс журнала веса (weight_log)
type WeightStorage interface {
	// AppendWeight добавляет запись; ID и CreatedAt заполняются, если пустые
	AppendWeight(ctx context.Context, entry *WeightEntry) error

	// ListWeights возвращает записи за период [from, to] по log_date, created_at
	ListWeights(ctx context.Context, userID string, from, to time.Time) ([]WeightEntry, error)

	// LatestWeight возвращает последнюю по log_date запись, ErrNotFound если журнал пуст
	LatestWeight(ctx context.Context, userID string) (*WeightEntry, error)
}

// FoodItem — позиция справочника продуктов
type FoodItem struct {
	ID              uuid.UUID
	Name            string
	Unit            string // g, ml, piece ...
	CaloriesPerUnit float64
	ProteinPerUnit  *float64
	ArchivedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FoodUpsert — создание/обновление продукта (по имени, без учёта регистра)
type FoodUpsert struct {
	Name            string
	Unit            string
	CaloriesPerUnit float64
	ProteinPerUnit  *float64
}

// FoodsStorage — интерфейс справочника продуктов
type FoodsStorage interface {
	// GetFood возвращает продукт по ID, включая архивные
	GetFood(ctx context.Context, id uuid.UUID) (*FoodItem, error)

	// ListFoods возвращает активные продукты с поиском по имени и общее количество
	ListFoods(ctx context.Context, query string, limit, offset int) ([]FoodItem, int, error)

	// UpsertFood создаёт или обновляет продукт, снимая архивный флаг
	UpsertFood(ctx context.Context, req FoodUpsert) (FoodItem, error)

	// ArchiveFood помечает продукт удалённым (старые события сохраняют свои калории)
	ArchiveFood(ctx context.Context, id uuid.UUID) error
}

// NotificationsStorage — интерфейс для работы с inbox
type NotificationsStorage interface {
	// CreateNotification создаёт уведомление (upsert by user_id, kind, source_date)
	CreateNotification(ctx context.Context, n *Notification) error

	// ListNotifications возвращает уведомления пользователя, новые первыми
	ListNotifications(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]Notification, error)

	// UnreadCount возвращает количество непрочитанных уведомлений
	UnreadCount(ctx context.Context, userID string) (int, error)

	// MarkRead отмечает указанные уведомления как прочитанные (проверяет владельца)
	MarkRead(ctx context.Context, userID string, ids []uuid.UUID) (int, error)

	// MarkAllRead отмечает все уведомления пользователя как прочитанные
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// Notification — уведомление для пользователя
type Notification struct {
	ID         uuid.UUID
	UserID     string
	Kind       string // streak_at_risk, no_plan
	Title      string
	Body       string
	SourceDate *time.Time
	Severity   string // info | warn
	CreatedAt  time.Time
	ReadAt     *time.Time
}

// ReportsStorage — интерфейс для работы с отчётами
type ReportsStorage interface {
	CreateReport(ctx context.Context, report *ReportMeta) error
	GetReport(ctx context.Context, id uuid.UUID) (*ReportMeta, error)
	ListReports(ctx context.Context, userID string, limit, offset int) ([]ReportMeta, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
}

// ReportMeta — метаданные отчёта
type ReportMeta struct {
	ID        uuid.UUID
	UserID    string
	Format    string  // pdf | csv
	FromDate  string  // YYYY-MM-DD
	ToDate    string  // YYYY-MM-DD
	ObjectKey *string // S3 object key (NULL в local режиме)
	SizeBytes int64
	Status    string // ready | failed
	Error     *string
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      []byte // только local режим
}
