package server

import (
	"net/http"

	"github.com/jrsteele09/churchai-session/authmodel"
	"github.com/jrsteele09/churchai-session/internal/utils"
	"github.com/rs/zerolog/log"
)

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.LoginRequest
		s.serveRequest(apiRequest{
			W:          w,
			R:          r,
			BodySchema: s.schemas.login,
			BodyObj:    &req,
			EndpointLogic: func() (any, error) {
				resp, err := s.auth.Login(req)
				if err != nil {
					s.metrics.events.WithLabelValues(eventLoginFailed).Inc()
					return nil, err
				}
				s.metrics.events.WithLabelValues(eventLoginSucceeded).Inc()
				return resp, nil
			},
			SuccessCode:   http.StatusOK,
			FailureCode:   http.StatusInternalServerError,
			FailureDetail: detailLoginFailed,
		})
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.RegisterRequest
		s.serveRequest(apiRequest{
			W:          w,
			R:          r,
			BodySchema: s.schemas.register,
			BodyObj:    &req,
			EndpointLogic: func() (any, error) {
				resp, err := s.auth.Register(req)
				if err != nil {
					return nil, err
				}
				s.metrics.events.WithLabelValues(eventRegistered).Inc()
				log.Info().
					Str("user_id", resp.UserID).
					Str("registration_type", string(req.RegistrationType)).
					Str("status", string(resp.Status)).
					Float64("ai_score", utils.Value(resp.AIScore)).
					Msg("user registered")
				return resp, nil
			},
			SuccessCode:   http.StatusCreated,
			FailureCode:   http.StatusInternalServerError,
			FailureDetail: detailRegisterFailed,
		})
	}
}

// RefreshHandler answers every unexpected failure with 401 so clients always end the session
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.RefreshRequest
		s.serveRequest(apiRequest{
			W:          w,
			R:          r,
			BodySchema: s.schemas.refresh,
			BodyObj:    &req,
			EndpointLogic: func() (any, error) {
				resp, err := s.auth.Refresh(req)
				if err != nil {
					s.metrics.events.WithLabelValues(eventRefreshFailed).Inc()
					return nil, err
				}
				s.metrics.events.WithLabelValues(eventRefreshSucceeded).Inc()
				return resp, nil
			},
			SuccessCode:   http.StatusOK,
			FailureCode:   http.StatusUnauthorized,
			FailureDetail: detailRefreshFailed,
		})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveRequest(apiRequest{
			W: w,
			R: r,
			EndpointLogic: func() (any, error) {
				user, claims, _ := currentUser(r)
				resp, err := s.auth.Logout(user, claims)
				if err != nil {
					return nil, err
				}
				s.metrics.events.WithLabelValues(eventLoggedOut).Inc()
				return resp, nil
			},
			SuccessCode:   http.StatusOK,
			FailureCode:   http.StatusInternalServerError,
			FailureDetail: detailLogoutFailed,
		})
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _, _ := currentUser(r)
		writeJSON(w, http.StatusOK, s.auth.Me(user))
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.ChangePasswordRequest
		s.serveRequest(apiRequest{
			W:          w,
			R:          r,
			BodySchema: s.schemas.changePassword,
			BodyObj:    &req,
			EndpointLogic: func() (any, error) {
				user, _, _ := currentUser(r)
				resp, err := s.auth.ChangePassword(user, req)
				if err != nil {
					return nil, err
				}
				s.metrics.events.WithLabelValues(eventPasswordChanged).Inc()
				return resp, nil
			},
			SuccessCode:   http.StatusOK,
			FailureCode:   http.StatusInternalServerError,
			FailureDetail: detailChangePassFailed,
		})
	}
}

func (s *Server) VerifyEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.VerifyEmailRequest
		s.serveRequest(apiRequest{
			W:          w,
			R:          r,
			BodySchema: s.schemas.verifyEmail,
			BodyObj:    &req,
			EndpointLogic: func() (any, error) {
				resp, err := s.auth.VerifyEmail(req)
				if err != nil {
					return nil, err
				}
				s.metrics.events.WithLabelValues(eventEmailVerified).Inc()
				return resp, nil
			},
			SuccessCode:   http.StatusOK,
			FailureCode:   http.StatusInternalServerError,
			FailureDetail: detailVerifyEmailFailed,
		})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authmodel.HealthResponse{
			Status:  "healthy",
			Service: s.config.GetAppName(),
		})
	}
}
