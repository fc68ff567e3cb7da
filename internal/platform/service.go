// Package platform 은 외부 마켓플레이스 계정 연동 관리를 제공한다.
package platform

import (
	"context"
	"log/slog"
	"strings"

	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/model"
)

// BackendPlatformClient 는 플랫폼 서비스가 필요로 하는 백엔드 호출의 인터페이스.
type BackendPlatformClient interface {
	ListPlatforms(ctx context.Context, token string) ([]backend.PlatformResponse, error)
	ConnectPlatform(ctx context.Context, token string, req backend.ConnectPlatformRequest) (*backend.PlatformResponse, error)
	DisconnectPlatform(ctx context.Context, token, platformName string) (*backend.MessageResponse, error)
}

// Service 는 플랫폼 연동 비즈니스 로직을 제공한다.
type Service struct {
	backend BackendPlatformClient
	logger  *slog.Logger
}

// NewService 는 Service 를 생성한다.
func NewService(backendClient BackendPlatformClient, logger *slog.Logger) *Service {
	return &Service{
		backend: backendClient,
		logger:  logger,
	}
}

// List 는 연동된 플랫폼 목록을 조회한다.
func (s *Service) List(ctx context.Context, token string) ([]model.PlatformLink, error) {
	resp, err := s.backend.ListPlatforms(ctx, token)
	if err != nil {
		return nil, err
	}

	links := make([]model.PlatformLink, 0, len(resp))
	for _, p := range resp {
		links = append(links, model.PlatformLink{
			ID:             p.ID,
			PlatformName:   p.PlatformName,
			PlatformUserID: p.PlatformUserID,
		})
	}
	return links, nil
}

// Connect 는 외부 마켓플레이스 계정을 연동한다.
// 이미 연동된 플랫폼은 연동 API를 호출하지 않고 즉시 중복 에러를 반환한다.
// (백엔드도 같은 검사를 하므로 목록 조회 이후 끼어든 중복은 백엔드 메시지로 표시된다.)
func (s *Service) Connect(ctx context.Context, token, platformName, platformUserID, password string) (*model.PlatformLink, error) {
	platformName = strings.TrimSpace(platformName)
	if platformName != model.PlatformBunjang && platformName != model.PlatformJoongna {
		return nil, model.NewPlatformNotFoundError(platformName)
	}

	existing, err := s.backend.ListPlatforms(ctx, token)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.PlatformName == platformName {
			return nil, model.NewDuplicatePlatformError()
		}
	}

	resp, err := s.backend.ConnectPlatform(ctx, token, backend.ConnectPlatformRequest{
		PlatformName:   platformName,
		PlatformUserID: strings.TrimSpace(platformUserID),
		Password:       password,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("platform connected",
		slog.String("platform", resp.PlatformName),
	)

	return &model.PlatformLink{
		ID:             resp.ID,
		PlatformName:   resp.PlatformName,
		PlatformUserID: resp.PlatformUserID,
	}, nil
}

// Disconnect 는 플랫폼 연동을 해제한다.
func (s *Service) Disconnect(ctx context.Context, token, platformName string) error {
	if _, err := s.backend.DisconnectPlatform(ctx, token, platformName); err != nil {
		return err
	}

	s.logger.Info("platform disconnected",
		slog.String("platform", platformName),
	)
	return nil
}
