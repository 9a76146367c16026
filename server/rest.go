// Copyright 2025 anirec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anirec-io/anirec/base/log"
	"github.com/anirec-io/anirec/config"
	"github.com/anirec-io/anirec/logics"
	"github.com/anirec-io/anirec/storage/data"
)

// RestServer exposes the recommendation engines over a REST-ful API.
type RestServer struct {
	Recommender *logics.Recommender
	Config      *config.Config
	HttpHost    string
	HttpPort    int
	WebService  *restful.WebService
}

// NewRestServer creates a REST server around a recommender.
func NewRestServer(recommender *logics.Recommender, cfg *config.Config) *RestServer {
	return &RestServer{
		Recommender: recommender,
		Config:      cfg,
		HttpHost:    cfg.Server.HttpHost,
		HttpPort:    cfg.Server.HttpPort,
		WebService:  new(restful.WebService),
	}
}

// StartHttpServer registers the restful routes, the OpenAPI endpoint and
// the prometheus endpoint, then serves until failure.
func (s *RestServer) StartHttpServer() {
	s.CreateWebService()
	restful.DefaultContainer.Add(s.WebService)
	specConfig := restfulspec.Config{
		WebServices: restful.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}
	restful.DefaultContainer.Add(restfulspec.NewOpenAPIService(specConfig))
	http.Handle("/metrics", promhttp.Handler())

	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s:%d", s.HttpHost, s.HttpPort)))
	log.Logger().Fatal("failed to start http server",
		zap.Error(http.ListenAndServe(fmt.Sprintf("%s:%d", s.HttpHost, s.HttpPort), nil)))
}

func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	chain.ProcessFilter(req, resp)
	log.Logger().Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()))
}

// CreateWebService registers the API routes.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(LogFilter)

	// Get recommendations
	ws.Route(ws.GET("/recommend/{user-id}").To(s.getRecommend).
		Doc("Get recommendations for a user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommend"}).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("int")).
		Param(ws.QueryParameter("strategy", "recommendation strategy").DataType("string")).
		Param(ws.QueryParameter("n", "number of returned recommendations").DataType("int")).
		Writes([]logics.Recommendation{}))
	// Get diverse recommendations
	ws.Route(ws.GET("/recommend/{user-id}/diverse").To(s.getDiverseRecommend).
		Doc("Get recommendations interleaved from both engines.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommend"}).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("int")).
		Param(ws.QueryParameter("n", "number of returned recommendations").DataType("int")).
		Writes([]logics.Recommendation{}))
	// Get adaptive recommendations
	ws.Route(ws.GET("/recommend/{user-id}/adaptive").To(s.getAdaptiveRecommend).
		Doc("Get hybrid recommendations with weights tuned to the user's rating spread.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommend"}).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("int")).
		Param(ws.QueryParameter("n", "number of returned recommendations").DataType("int")).
		Writes([]logics.Recommendation{}))
	// Get popular items
	ws.Route(ws.GET("/popular").To(s.getPopular).
		Doc("Get the globally popular items.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommend"}).
		Param(ws.QueryParameter("n", "number of returned items").DataType("int")).
		Writes([]logics.Recommendation{}))
	// Get available strategies
	ws.Route(ws.GET("/strategies").To(s.getStrategies).
		Doc("Get the available recommendation strategies.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommend"}).
		Writes(map[string]string{}))
	// Get an item
	ws.Route(ws.GET("/item/{item-id}").To(s.getItem).
		Doc("Get an item.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"item"}).
		Param(ws.PathParameter("item-id", "identifier of the item").DataType("int")).
		Writes(data.Item{}))
	// Get a user's ratings
	ws.Route(ws.GET("/user/{user-id}/ratings").To(s.getUserRatings).
		Doc("Get the rating history of a user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"rating"}).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("int")).
		Writes([]data.Rating{}))
	// Insert a rating
	ws.Route(ws.POST("/rating").To(s.insertRating).
		Doc("Insert a rating, overwriting any previous score.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"rating"}).
		Reads(RatingRequest{}).
		Writes(Success{}))
}

// RatingRequest is the payload of a rating insert.
type RatingRequest struct {
	UserId int32   `json:"user_id"`
	ItemId int32   `json:"item_id"`
	Score  float64 `json:"score"`
}

// Success reports the number of affected rows.
type Success struct {
	RowAffected int `json:"row_affected"`
}

// ParseInt parses an integer query parameter or falls back to a default.
func ParseInt(request *restful.Request, name string, fallback int) (value int, err error) {
	valueString := request.QueryParameter(name)
	value, err = strconv.Atoi(valueString)
	if err != nil && valueString == "" {
		value = fallback
		err = nil
	}
	return
}

func parseUserId(request *restful.Request) (int32, error) {
	userId, err := strconv.ParseInt(request.PathParameter("user-id"), 10, 32)
	if err != nil {
		return 0, errors.BadRequestf("invalid user id: %v", err)
	}
	return int32(userId), nil
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	n, err := ParseInt(request, "n", s.Config.Server.DefaultN)
	if err != nil {
		BadRequest(response, err)
		return
	}
	strategy := request.QueryParameter("strategy")
	if strategy == "" {
		strategy = logics.StrategyHybrid
	}
	start := time.Now()
	recommendations, err := s.Recommender.Recommend(strategy, userId, n)
	if err != nil {
		if errors.Is(err, errors.BadRequest) {
			BadRequest(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	RecommendSeconds.Observe(time.Since(start).Seconds())
	RecommendationsServedTotal.WithLabelValues(strategy).Add(float64(len(recommendations)))
	Ok(response, recommendations)
}

func (s *RestServer) getDiverseRecommend(request *restful.Request, response *restful.Response) {
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	n, err := ParseInt(request, "n", s.Config.Server.DefaultN)
	if err != nil {
		BadRequest(response, err)
		return
	}
	recommendations, err := s.Recommender.DiverseRecommend(userId, n)
	if err != nil {
		if errors.Is(err, errors.BadRequest) {
			BadRequest(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	RecommendationsServedTotal.WithLabelValues("diverse").Add(float64(len(recommendations)))
	Ok(response, recommendations)
}

func (s *RestServer) getAdaptiveRecommend(request *restful.Request, response *restful.Response) {
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	n, err := ParseInt(request, "n", s.Config.Server.DefaultN)
	if err != nil {
		BadRequest(response, err)
		return
	}
	recommendations, err := s.Recommender.AdaptiveRecommend(userId, n)
	if err != nil {
		if errors.Is(err, errors.BadRequest) {
			BadRequest(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	RecommendationsServedTotal.WithLabelValues("adaptive").Add(float64(len(recommendations)))
	Ok(response, recommendations)
}

func (s *RestServer) getPopular(request *restful.Request, response *restful.Response) {
	n, err := ParseInt(request, "n", s.Config.Server.DefaultN)
	if err != nil {
		BadRequest(response, err)
		return
	}
	recommendations, err := s.Recommender.PopularItems(n)
	if err != nil {
		if errors.Is(err, errors.BadRequest) {
			BadRequest(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	Ok(response, recommendations)
}

func (s *RestServer) getStrategies(_ *restful.Request, response *restful.Response) {
	Ok(response, s.Recommender.Strategies())
}

func (s *RestServer) getItem(request *restful.Request, response *restful.Response) {
	itemId, err := strconv.ParseInt(request.PathParameter("item-id"), 10, 32)
	if err != nil {
		BadRequest(response, errors.BadRequestf("invalid item id: %v", err))
		return
	}
	item, err := s.Recommender.ItemInfo(int32(itemId))
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			PageNotFound(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	Ok(response, item)
}

func (s *RestServer) getUserRatings(request *restful.Request, response *restful.Response) {
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	ratings, err := s.Recommender.UserRatings(userId)
	if err != nil {
		InternalServerError(response, err)
		return
	}
	Ok(response, ratings)
}

func (s *RestServer) insertRating(request *restful.Request, response *restful.Response) {
	var rating RatingRequest
	if err := request.ReadEntity(&rating); err != nil {
		BadRequest(response, err)
		return
	}
	if rating.Score <= 0 {
		BadRequest(response, errors.BadRequestf("score must be positive, got %v", rating.Score))
		return
	}
	if err := s.Recommender.AddRating(data.Rating{
		UserId: rating.UserId,
		ItemId: rating.ItemId,
		Score:  rating.Score,
	}); err != nil {
		InternalServerError(response, err)
		return
	}
	RatingsInsertedTotal.Inc()
	Ok(response, Success{RowAffected: 1})
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.Logger().Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns an internal server error.
func InternalServerError(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.Logger().Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// PageNotFound returns a not found error.
func PageNotFound(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteError(http.StatusNotFound, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// Ok returns the content as JSON.
func Ok(response *restful.Response, content interface{}) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteAsJson(content); err != nil {
		log.Logger().Error("failed to write json", zap.Error(err))
	}
}
