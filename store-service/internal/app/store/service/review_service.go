package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"bookstore/pkg/logger"
	"bookstore/pkg/metrics"
	"bookstore/store-service/internal/app/store/entity"
	"bookstore/store-service/internal/app/store/infrastructure"
	"bookstore/store-service/internal/app/store/repository"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrReviewNotAllowed = errors.New("review requires a delivered order containing the book")
	ErrDuplicateReview  = errors.New("review already submitted for this order")
)

// ReviewService отвечает за комментарии и оценки: проверку права
// на отзыв, объединенную ленту отзывов книги, модерацию и агрегаты оценок
type ReviewService struct {
	commentRepo repository.CommentRepository
	ratingRepo  repository.RatingRepository
	orderRepo   repository.OrderRepository
	authClient  infrastructure.AuthServiceClient
}

func NewReviewService(
	commentRepo repository.CommentRepository,
	ratingRepo repository.RatingRepository,
	orderRepo repository.OrderRepository,
	authClient infrastructure.AuthServiceClient,
) *ReviewService {
	return &ReviewService{
		commentRepo: commentRepo,
		ratingRepo:  ratingRepo,
		orderRepo:   orderRepo,
		authClient:  authClient,
	}
}

// gateReview проверяет общее правило для комментариев и оценок:
// заказ должен существовать, принадлежать пользователю, быть доставлен
// и содержать рецензируемую книгу
func (s *ReviewService) gateReview(ctx context.Context, userID, bookID string, orderID int64) error {
	order, err := s.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrReviewNotAllowed
		}
		return fmt.Errorf("failed to load order for review gate: %w", err)
	}

	if !orderCovers(order, userID, bookID) {
		return ErrReviewNotAllowed
	}

	return nil
}

// CreateComment сохраняет комментарий без одобрения после проверки права
// на отзыв и дубликата по (книга, пользователь, заказ)
func (s *ReviewService) CreateComment(ctx context.Context, userID string, req *entity.CreateCommentRequest) (*entity.Comment, error) {
	if err := s.gateReview(ctx, userID, req.BookID, req.OrderID); err != nil {
		return nil, err
	}

	exists, err := s.commentRepo.Exists(ctx, req.BookID, userID, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing comment: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	comment := &entity.Comment{
		BookID:   req.BookID,
		UserID:   userID,
		OrderID:  req.OrderID,
		Text:     req.Text,
		Approved: false,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		// Уникальный индекс страхует pre-check от конкурентных отправок
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	metrics.CommentsCreated.Inc()

	return comment, nil
}

// CreateRating сохраняет оценку после тех же проверок, что и комментарий
func (s *ReviewService) CreateRating(ctx context.Context, userID string, req *entity.CreateRatingRequest) (*entity.Rating, error) {
	if err := s.gateReview(ctx, userID, req.BookID, req.OrderID); err != nil {
		return nil, err
	}

	exists, err := s.ratingRepo.Exists(ctx, req.BookID, userID, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing rating: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	rating := &entity.Rating{
		BookID:  req.BookID,
		UserID:  userID,
		OrderID: req.OrderID,
		Rating:  req.Rating,
	}

	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	metrics.RatingsCreated.Observe(float64(req.Rating))

	return rating, nil
}

type reviewKey struct {
	userID  string
	orderID int64
}

// GetBookReviews строит объединенную ленту отзывов книги: одобренные
// комментарии соединяются с оценками по (пользователь, заказ), так что
// комментарий и оценка одной покупки выводятся одной записью. Средний балл
// считается по всем оценкам, включая оценки с неодобренным комментарием
func (s *ReviewService) GetBookReviews(ctx context.Context, bookID string) (*entity.BookReviewsResponse, error) {
	comments, err := s.commentRepo.GetApprovedByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	ratings, err := s.ratingRepo.GetByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}

	entries := make(map[reviewKey]*entity.ReviewEntry, len(comments)+len(ratings))

	for i := range comments {
		c := &comments[i]
		id := c.ID.Hex()
		text := c.Text
		entries[reviewKey{c.UserID, c.OrderID}] = &entity.ReviewEntry{
			CommentID: &id,
			BookID:    c.BookID,
			UserID:    c.UserID,
			OrderID:   c.OrderID,
			Text:      &text,
			CreatedAt: c.CreatedAt,
		}
	}

	ratingSum := 0
	for i := range ratings {
		r := &ratings[i]
		ratingSum += r.Rating

		id := r.ID.Hex()
		value := r.Rating
		key := reviewKey{r.UserID, r.OrderID}

		if entry, ok := entries[key]; ok {
			entry.RatingID = &id
			entry.Rating = &value
			if r.CreatedAt.After(entry.CreatedAt) {
				entry.CreatedAt = r.CreatedAt
			}
			continue
		}

		entries[key] = &entity.ReviewEntry{
			RatingID:  &id,
			BookID:    r.BookID,
			UserID:    r.UserID,
			OrderID:   r.OrderID,
			Rating:    &value,
			CreatedAt: r.CreatedAt,
		}
	}

	reviews := make([]entity.ReviewEntry, 0, len(entries))
	for _, entry := range entries {
		reviews = append(reviews, *entry)
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	s.resolveUserNames(ctx, reviews)

	average := 0.0
	if len(ratings) > 0 {
		average = round2(float64(ratingSum) / float64(len(ratings)))
	}

	return &entity.BookReviewsResponse{
		Reviews:       reviews,
		AverageRating: average,
		RatingCount:   len(ratings),
		Total:         len(reviews),
	}, nil
}

// resolveUserNames подставляет имена пользователей из auth-service.
// При ошибке запроса лента все равно отдается, имена остаются пустыми
func (s *ReviewService) resolveUserNames(ctx context.Context, reviews []entity.ReviewEntry) {
	if len(reviews) == 0 {
		return
	}

	userIDs := make([]string, 0, len(reviews))
	seen := make(map[string]bool, len(reviews))
	for _, r := range reviews {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			userIDs = append(userIDs, r.UserID)
		}
	}

	users, err := s.authClient.GetUsers(ctx, userIDs)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to resolve reviewer names")
		return
	}

	for i := range reviews {
		if user, ok := users[reviews[i].UserID]; ok {
			reviews[i].UserName = user.Name
		}
	}
}

func (s *ReviewService) GetBookAverage(ctx context.Context, bookID string) (*entity.AverageRatingResponse, error) {
	ratings, err := s.ratingRepo.GetByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}

	average := 0.0
	if len(ratings) > 0 {
		average = round2(float64(sum) / float64(len(ratings)))
	}

	return &entity.AverageRatingResponse{
		BookID:        bookID,
		AverageRating: average,
		RatingCount:   len(ratings),
	}, nil
}

func (s *ReviewService) GetRatingsByOrder(ctx context.Context, orderID int64) ([]entity.Rating, error) {
	ratings, err := s.ratingRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order ratings: %w", err)
	}

	return ratings, nil
}

func (s *ReviewService) GetRatingsByUser(ctx context.Context, userID string) ([]entity.Rating, error) {
	ratings, err := s.ratingRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user ratings: %w", err)
	}

	return ratings, nil
}

func (s *ReviewService) GetPendingComments(ctx context.Context) ([]entity.Comment, error) {
	comments, err := s.commentRepo.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending comments: %w", err)
	}

	return comments, nil
}

func (s *ReviewService) GetAllComments(ctx context.Context) ([]entity.Comment, error) {
	comments, err := s.commentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	return comments, nil
}

// SetCommentApproval переключает видимость комментария в публичной ленте
func (s *ReviewService) SetCommentApproval(ctx context.Context, id string, approved bool) (*entity.Comment, error) {
	if err := s.commentRepo.SetApproval(ctx, id, approved); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to set comment approval: %w", err)
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload comment: %w", err)
	}

	return comment, nil
}

// DeleteComment удаляет комментарий вместе с парной оценкой по тому же
// ключу (книга, пользователь, заказ). Комментарий без парной оценки
// удаляется сам по себе
func (s *ReviewService) DeleteComment(ctx context.Context, id string) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to load comment: %w", err)
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if err := s.ratingRepo.DeleteByReviewKey(ctx, comment.BookID, comment.UserID, comment.OrderID); err != nil {
		return fmt.Errorf("failed to delete paired rating: %w", err)
	}

	return nil
}
