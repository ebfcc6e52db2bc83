package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Uploader is satisfied by *storage.GCSUploader.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

type DesignInput struct {
	Name            string
	Image           string
	ExtractedDesign string
	TagIDs          []uint64
}

type DesignDetail struct {
	Design model.Design
	Tags   []model.Tag
}

type DesignService interface {
	Create(ctx context.Context, uid string, in DesignInput) (*DesignDetail, error)
	List(ctx context.Context, limit, offset int) ([]DesignDetail, int64, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type designService struct {
	designs  repository.DesignRepository
	users    repository.UserRepository
	uploader Uploader
	now      func() time.Time
}

func NewDesignService(designs repository.DesignRepository, users repository.UserRepository, uploader Uploader) DesignService {
	return &designService{designs: designs, users: users, uploader: uploader, now: time.Now}
}

func (s *designService) Create(ctx context.Context, uid string, in DesignInput) (*DesignDetail, error) {
	caller, err := s.users.FindByID(ctx, uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !caller.IsTailor() {
		return nil, ErrOnlyTailorsDesign
	}
	name := strings.TrimSpace(in.Name)
	image := in.ExtractedDesign
	if image == "" {
		image = in.Image
	}
	if name == "" || image == "" {
		return nil, ErrDesignFields
	}
	data, err := DecodeDataURL(image)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, errors.New("design storage is not configured")
	}

	objectPath := fmt.Sprintf("designs/%d-%s.png", s.now().UnixMilli(), uuid.NewString()[:6])
	publicURL, err := s.uploader.Upload(ctx, objectPath, "image/png", data)
	if err != nil {
		return nil, err
	}

	var tags []model.Tag
	if len(in.TagIDs) > 0 {
		if tags, err = s.designs.FindTagsByIDs(ctx, in.TagIDs); err != nil {
			return nil, err
		}
	}
	tagIDs := make([]uint64, 0, len(tags))
	for _, t := range tags {
		tagIDs = append(tagIDs, t.ID)
	}
	d := &model.Design{
		TailorID:         uid,
		OriginalImageURL: publicURL,
		Description:      name,
	}
	if err := s.designs.Create(ctx, d, tagIDs); err != nil {
		return nil, err
	}
	return &DesignDetail{Design: *d, Tags: tags}, nil
}

func (s *designService) List(ctx context.Context, limit, offset int) ([]DesignDetail, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	designs, total, err := s.designs.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(designs))
	for _, d := range designs {
		ids = append(ids, d.DesignID)
	}
	tagIDs, err := s.designs.TagIDsByDesign(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	allTags, err := s.designs.ListTags(ctx)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uint64]model.Tag, len(allTags))
	for _, t := range allTags {
		byID[t.ID] = t
	}

	out := make([]DesignDetail, 0, len(designs))
	for _, d := range designs {
		dd := DesignDetail{Design: d, Tags: []model.Tag{}}
		for _, id := range tagIDs[d.DesignID] {
			if t, ok := byID[id]; ok {
				dd.Tags = append(dd.Tags, t)
			}
		}
		out = append(out, dd)
	}
	return out, total, nil
}

func (s *designService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.designs.ListTags(ctx)
}

// DecodeDataURL returns the bytes of a base64 "data:<mime>;base64,<payload>" URL.
// A bare base64 payload is accepted too.
func DecodeDataURL(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, ErrInvalidImage
		}
		payload = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return data, nil
}
