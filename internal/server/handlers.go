package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/domain/activeusers"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/event"
	"github.com/askwave/askwave/internal/readmodel"
	"github.com/askwave/askwave/internal/workflow"
)

// questionView is the JSON shape of one question in query responses.
type questionView struct {
	QuestionID             string                      `json:"questionId"`
	Text                   string                      `json:"text"`
	Options                []question.QuestionOption   `json:"options"`
	IsDisplayed            bool                        `json:"isDisplayed"`
	ResponseCount          int                         `json:"responseCount"`
	Responses              []question.QuestionResponse `json:"responses"`
	QuestionGroupID        string                      `json:"questionGroupId"`
	QuestionGroupName      string                      `json:"questionGroupName"`
	Order                  int                         `json:"order"`
	AllowMultipleResponses bool                        `json:"allowMultipleResponses"`
}

func viewQuestion(d readmodel.QuestionDetail) questionView {
	return questionView{
		QuestionID:             d.QuestionID,
		Text:                   d.Text,
		Options:                d.Options,
		IsDisplayed:            d.IsDisplayed,
		ResponseCount:          d.ResponseCount,
		Responses:              d.Responses,
		QuestionGroupID:        d.QuestionGroupID,
		QuestionGroupName:      d.QuestionGroupName,
		Order:                  d.Order,
		AllowMultipleResponses: d.AllowMultipleResponses,
	}
}

// groupView is the JSON shape of one group in query responses.
type groupView struct {
	GroupID    string                    `json:"groupId"`
	Name       string                    `json:"name"`
	UniqueCode string                    `json:"uniqueCode"`
	Questions  []group.QuestionReference `json:"questions"`
}

func viewGroup(d readmodel.GroupDetail) groupView {
	return groupView{
		GroupID:    d.GroupID,
		Name:       d.Name,
		UniqueCode: d.UniqueCode,
		Questions:  d.Questions,
	}
}

func viewQuestions(details []readmodel.QuestionDetail) []questionView {
	views := make([]questionView, 0, len(details))
	for _, d := range details {
		views = append(views, viewQuestion(d))
	}
	return views
}

func (s *Server) listQuestions(c *gin.Context) {
	details := s.model.ListQuestions(readmodel.ListFilter{
		TextContains: c.Query("text"),
		GroupID:      c.Query("groupId"),
	})
	c.JSON(http.StatusOK, viewQuestions(details))
}

func (s *Server) getQuestion(c *gin.Context) {
	d, ok := s.model.QuestionByID(c.Param("id"))
	if !ok {
		writeError(c, domain.NewNotFoundError("question %s not found", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, viewQuestion(d))
}

type createQuestionRequest struct {
	QuestionGroupID        string                    `json:"questionGroupId" binding:"required"`
	Text                   string                    `json:"text" binding:"required"`
	Options                []question.QuestionOption `json:"options" binding:"required"`
	AllowMultipleResponses bool                      `json:"allowMultipleResponses"`
}

func (s *Server) createQuestion(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	questionID, err := s.workflows.CreateQuestionInGroup(c.Request.Context(), req.QuestionGroupID, workflow.QuestionSeed{
		Text:                   req.Text,
		Options:                req.Options,
		AllowMultipleResponses: req.AllowMultipleResponses,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"questionId": questionID})
}

type updateQuestionRequest struct {
	Text                   string                    `json:"text" binding:"required"`
	Options                []question.QuestionOption `json:"options" binding:"required"`
	AllowMultipleResponses bool                      `json:"allowMultipleResponses"`
}

func (s *Server) updateQuestion(c *gin.Context) {
	var req updateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	res, err := s.exec.Execute(c.Request.Context(), question.UpdateQuestion{
		QuestionID:             c.Param("id"),
		Text:                   req.Text,
		Options:                req.Options,
		AllowMultipleResponses: req.AllowMultipleResponses,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionId": res.AggregateID, "version": res.Version})
}

func (s *Server) deleteQuestion(c *gin.Context) {
	if _, err := s.exec.Execute(c.Request.Context(), question.DeleteQuestion{QuestionID: c.Param("id")}); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) startDisplay(c *gin.Context) {
	res, err := s.workflows.StartDisplayExclusively(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionId": res.AggregateID, "version": res.Version})
}

func (s *Server) stopDisplay(c *gin.Context) {
	res, err := s.exec.Execute(c.Request.Context(), question.StopDisplay{QuestionID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionId": res.AggregateID, "version": res.Version})
}

type addResponseRequest struct {
	ParticipantName  string `json:"participantName"`
	SelectedOptionID string `json:"selectedOptionId" binding:"required"`
	Comment          string `json:"comment"`
	ClientID         string `json:"clientId" binding:"required"`
}

func (s *Server) addResponse(c *gin.Context) {
	var req addResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	res, err := s.exec.Execute(c.Request.Context(), question.AddResponse{
		QuestionID:       c.Param("id"),
		ParticipantName:  req.ParticipantName,
		SelectedOptionID: req.SelectedOptionID,
		Comment:          req.Comment,
		ClientID:         req.ClientID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"questionId": res.AggregateID, "version": res.Version})
}

type moveQuestionRequest struct {
	TargetGroupID string `json:"targetGroupId" binding:"required"`
	NewOrder      *int   `json:"newOrder"`
}

func (s *Server) moveQuestion(c *gin.Context) {
	var req moveQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	questionID := c.Param("id")
	current, ok := s.model.QuestionByID(questionID)
	if !ok {
		writeError(c, domain.NewNotFoundError("question %s not found", questionID))
		return
	}

	// Append to the target group when no explicit position was asked.
	newOrder := -1
	if req.NewOrder != nil {
		newOrder = *req.NewOrder
	}
	err := s.workflows.MoveQuestionBetweenGroups(c.Request.Context(), questionID, current.QuestionGroupID, req.TargetGroupID, newOrder)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionId": questionID, "questionGroupId": req.TargetGroupID})
}

func (s *Server) listGroups(c *gin.Context) {
	details := s.model.ListGroups()
	views := make([]groupView, 0, len(details))
	for _, d := range details {
		views = append(views, viewGroup(d))
	}
	c.JSON(http.StatusOK, views)
}

type createGroupRequest struct {
	Name      string `json:"name" binding:"required"`
	Questions []struct {
		Text                   string                    `json:"text"`
		Options                []question.QuestionOption `json:"options"`
		AllowMultipleResponses bool                      `json:"allowMultipleResponses"`
	} `json:"questions"`
}

func (s *Server) createGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	seeds := make([]workflow.QuestionSeed, 0, len(req.Questions))
	for _, q := range req.Questions {
		seeds = append(seeds, workflow.QuestionSeed{
			Text:                   q.Text,
			Options:                q.Options,
			AllowMultipleResponses: q.AllowMultipleResponses,
		})
	}

	groupID, err := s.workflows.CreateGroupWithQuestions(c.Request.Context(), req.Name, seeds)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"groupId": groupID})
}

func (s *Server) getGroup(c *gin.Context) {
	d, ok := s.model.GroupByID(c.Param("id"))
	if !ok {
		writeError(c, domain.NewNotFoundError("question group %s not found", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, viewGroup(d))
}

type renameGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) renameGroup(c *gin.Context) {
	var req renameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	res, err := s.exec.Execute(c.Request.Context(), group.UpdateQuestionGroupName{
		GroupID: c.Param("id"),
		NewName: req.Name,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groupId": res.AggregateID, "version": res.Version})
}

func (s *Server) deleteGroup(c *gin.Context) {
	if _, err := s.exec.Execute(c.Request.Context(), group.DeleteQuestionGroup{GroupID: c.Param("id")}); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) activeQuestion(c *gin.Context) {
	d, ok := s.model.ActiveQuestion(c.Param("id"))
	if !ok {
		writeError(c, domain.NewNotFoundError("no question is displayed in group %s", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, viewQuestion(d))
}

type changeOrderRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	NewOrder   int    `json:"newOrder"`
}

func (s *Server) changeOrder(c *gin.Context) {
	var req changeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	res, err := s.exec.Execute(c.Request.Context(), group.ChangeQuestionOrder{
		GroupID:    c.Param("id"),
		QuestionID: req.QuestionID,
		NewOrder:   req.NewOrder,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groupId": res.AggregateID, "version": res.Version})
}

func (s *Server) groupByCode(c *gin.Context) {
	code := c.Param("code")
	if !group.ValidCode(code) {
		writeError(c, domain.NewValidationError("invalid unique code %q", code))
		return
	}
	d, ok := s.model.GroupByCode(code)
	if !ok {
		writeError(c, domain.NewNotFoundError("no group carries code %s", code))
		return
	}
	c.JSON(http.StatusOK, viewGroup(d))
}

func (s *Server) activeQuestionByCode(c *gin.Context) {
	d, ok := s.model.GroupByCode(c.Param("code"))
	if !ok {
		writeError(c, domain.NewNotFoundError("no group carries code %s", c.Param("code")))
		return
	}
	q, ok := s.model.ActiveQuestion(d.GroupID)
	if !ok {
		writeError(c, domain.NewNotFoundError("no question is displayed in group %s", d.GroupID))
		return
	}
	c.JSON(http.StatusOK, viewQuestion(q))
}

// connectionView is the JSON shape of one roster entry.
type connectionView struct {
	ConnectionID string `json:"connectionId"`
	Name         string `json:"name,omitempty"`
}

func (s *Server) listConnections(c *gin.Context) {
	agg, err := s.exec.LoadAggregate(c.Request.Context(), event.AggregateActiveUsers, s.activeUsersID)
	if err != nil {
		writeError(c, err)
		return
	}

	roster, ok := agg.Payload.(activeusers.ActiveUsers)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"totalCount": 0, "users": []connectionView{}})
		return
	}

	views := make([]connectionView, 0, len(roster.Users))
	for _, u := range roster.Users {
		views = append(views, connectionView{ConnectionID: u.ConnectionID, Name: u.Name})
	}
	c.JSON(http.StatusOK, gin.H{"totalCount": roster.TotalCount, "users": views})
}

type renameConnectionRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) renameConnection(c *gin.Context) {
	var req renameConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	res, err := s.exec.Execute(c.Request.Context(), activeusers.UpdateUserName{
		ActiveUsersID: s.activeUsersID,
		ConnectionID:  c.Param("id"),
		Name:          req.Name,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connectionId": c.Param("id"), "version": res.Version})
}
