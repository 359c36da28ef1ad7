package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	data, err := json.Marshal(OK(map[string]any{"id": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code": 200, "message": "Success", "data": {"id": 1}}`, string(data))

	data, err = json.Marshal(OK(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code": 200, "message": "Success"}`, string(data))
}

func TestFail(t *testing.T) {
	r := Fail(errors.New("boom"))
	assert.Equal(t, Response{Code: http.StatusInternalServerError, Message: "boom"}, r)

	wrapped := fmt.Errorf("load user: %w", WithStatus(http.StatusNotFound, errors.New(ErrDataNotFound.About("User"))))
	r = Fail(wrapped)
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.Equal(t, "load user: User Data isn't found", r.Message)
}

func TestWithStatus(t *testing.T) {
	assert.NoError(t, WithStatus(http.StatusBadRequest, nil))

	base := errors.New("bad")
	err := WithStatus(http.StatusBadRequest, base)
	assert.ErrorIs(t, err, base)

	var se StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Status())
}

func TestPaginated(t *testing.T) {
	p := Paginated([]string{"a", "b"}, 2, 10, 12)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code": 200, "message": "Success", "data": ["a", "b"], "page": 2, "size": 10, "total": 12}`, string(data))

	assert.Equal(t, int64(0), Paginated(nil, 1, 10, -5).Total)
	assert.Equal(t, int64(2), p.Pages())
}

func TestPagination_Pages(t *testing.T) {
	assert.Equal(t, int64(0), Pagination{Page: 1, Size: 10}.Pages())
	assert.Equal(t, int64(1), Pagination{Page: 1, Size: 10, Total: 10}.Pages())
	assert.Equal(t, int64(3), Pagination{Page: 1, Size: 10, Total: 21}.Pages())
	assert.Equal(t, int64(1), Pagination{Total: 50}.Pages())
}

func TestResponse_Meta(t *testing.T) {
	meta := OK("x").Meta()
	assert.Equal(t, Metadata{Code: 200, Message: "Success"}, meta)

	data, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code": 200, "message": "Success"}`, string(data))
}

func TestMessage_About(t *testing.T) {
	assert.Equal(t, "Email is invalid", ErrIsInvalid.About("Email"))
	assert.Equal(t, "Token is expired", ErrExpired.About("Token"))
}

func TestResponses_Codes(t *testing.T) {
	r := Responses{}
	tests := []struct {
		name  string
		docs  []Documented
		codes []int
	}{
		{"get", r.Get(), []int{200, 400, 404, 500}},
		{"pagination", r.Pagination(), []int{200, 400, 404, 500}},
		{"creation", r.Creation(), []int{201, 400, 500}},
		{"update", r.Update(), []int{200, 204, 400, 500}},
		{"delete", r.Delete(), []int{200, 204, 400, 500}},
		{"auth option", r.Get(WithAuth()), []int{200, 400, 401, 404, 500}},
		{"exclude", r.Delete(Exclude(204, 400)), []int{200, 500}},
		{"exclude auth", Responses{Auth: true}.Creation(Exclude(401)), []int{201, 400, 500}},
		{"extra", r.Creation(With(Documented{Code: 409, Message: ErrDataAlreadyExist.About("User")})), []int{201, 400, 409, 500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.codes, Codes(tt.docs))
		})
	}
}

func TestResponses_Messages(t *testing.T) {
	r := Responses{Object: "User", Auth: true}

	messages := func(docs []Documented) map[int]string {
		out := map[int]string{}
		for _, d := range docs {
			out[d.Code] = d.Message
		}
		return out
	}

	assert.Equal(t, map[int]string{
		200: "Success get all User",
		400: "Bad Request",
		401: "Unauthorized",
		404: "User not found",
		500: "Internal Server Error",
	}, messages(r.Pagination()))

	assert.Equal(t, "User created successfully", messages(r.Creation())[201])
	assert.Equal(t, "User updated successfully", messages(r.Update())[204])
	assert.Equal(t, "Role delete successfully", messages(r.Delete(WithObject("Role")))[200])
	assert.Equal(t, "Data not found", messages(Responses{}.Get())[404])
}

func TestResponses_PayloadShape(t *testing.T) {
	docs := Responses{}.Pagination()
	require.Equal(t, 200, docs[0].Code)
	assert.True(t, docs[0].HasData)
	assert.True(t, docs[0].Paginated)

	update := Responses{}.Update()
	assert.True(t, update[0].HasData)
	assert.False(t, update[1].HasData)
}
