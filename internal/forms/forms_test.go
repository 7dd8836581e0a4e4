package forms

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"backoffice-console/internal/registry"
	"backoffice-console/internal/transport"
	apperrors "backoffice-console/pkg/errors"
	"backoffice-console/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func devices() *registry.ResourceDescriptor {
	return &registry.ResourceDescriptor{
		Key:            "devices",
		Label:          "Device",
		Permission:     "LOVdv",
		ListEndpoint:   "/device",
		CreateEndpoint: "/device",
		UpdateEndpoint: "/device/%s",
		DeleteEndpoint: "/device/%s",
		Columns:        []registry.ColumnDescriptor{{Title: "Serial", DataKey: "serialNumber"}},
		Fields: []registry.FieldDescriptor{
			{Name: "serialNumber", Label: "Serial", Kind: registry.KindText, Required: true, Pattern: `^SN-\d+$`},
			{Name: "governorateId", Label: "Governorate", Kind: registry.KindSelect, Required: true, OptionsEndpoint: "/governorate", NumericID: true},
			{Name: "officeId", Label: "Office", Kind: registry.KindSelect, Required: true, DependsOn: "governorateId", DependentEndpoint: "/office?GovernorateId=%s", NumericID: true},
			{Name: "roomId", Label: "Room", Kind: registry.KindSelect, DependsOn: "officeId", DependentEndpoint: "/room?OfficeId=%s"},
			{Name: "capacity", Label: "Capacity", Kind: registry.KindNumber, Min: float(1), Max: float(50)},
			{Name: "installedAt", Label: "Installed", Kind: registry.KindDate},
			{Name: "tags", Label: "Tags", Kind: registry.KindMultiSelect, StaticOptions: []registry.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}}},
		},
	}
}

type fakeLoader struct {
	calls   []string
	options map[string][]registry.Option
	fail    map[string]error
}

func (l *fakeLoader) LoadOptions(_ context.Context, _ string, endpoint string) ([]registry.Option, error) {
	l.calls = append(l.calls, endpoint)
	if err := l.fail[endpoint]; err != nil {
		return nil, err
	}
	return l.options[endpoint], nil
}

func TestForm_DependentResetAndStaleResponse(t *testing.T) {
	desc := devices()
	f := NewForm(desc, nil)

	require.NoError(t, f.Set(desc, "governorateId", "baghdad"))
	first, ok := f.BeginFetch(desc, "officeId")
	require.True(t, ok)
	assert.Equal(t, "/office?GovernorateId=baghdad", first.Endpoint)

	require.NoError(t, f.Set(desc, "officeId", "7"))
	require.NoError(t, f.Set(desc, "governorateId", "basra"))
	assert.Nil(t, f.Values["officeId"], "office сбрасывается до загрузки нового списка")

	second, ok := f.BeginFetch(desc, "officeId")
	require.True(t, ok)

	// первый ответ пришёл после начала второго запроса
	applied := f.ApplyFetch(desc, first, []registry.Option{{Label: "Karkh", Value: "1"}})
	assert.False(t, applied)
	_, cached := f.Options["officeId"]
	assert.False(t, cached)
	assert.True(t, f.Pending["officeId"])

	applied = f.ApplyFetch(desc, second, []registry.Option{{Label: "Zubair", Value: "9"}})
	assert.True(t, applied)
	assert.Equal(t, []registry.Option{{Label: "Zubair", Value: "9"}}, f.Options["officeId"])
	assert.False(t, f.Pending["officeId"])
	assert.Nil(t, f.Values["officeId"])
}

func TestForm_ResetCascadesThroughChain(t *testing.T) {
	desc := devices()
	f := NewForm(desc, nil)

	require.NoError(t, f.Set(desc, "governorateId", "1"))
	require.NoError(t, f.Set(desc, "officeId", "2"))
	require.NoError(t, f.Set(desc, "roomId", "3"))
	f.Options["roomId"] = []registry.Option{{Label: "R3", Value: "3"}}

	require.NoError(t, f.Set(desc, "governorateId", "4"))
	assert.Nil(t, f.Values["officeId"])
	assert.Nil(t, f.Values["roomId"])
	_, cached := f.Options["roomId"]
	assert.False(t, cached)
}

func TestForm_SameValueKeepsDependents(t *testing.T) {
	desc := devices()
	f := NewForm(desc, nil)

	require.NoError(t, f.Set(desc, "governorateId", "1"))
	require.NoError(t, f.Set(desc, "officeId", "2"))
	require.NoError(t, f.Set(desc, "governorateId", float64(1)))

	assert.Equal(t, "2", f.Values["officeId"])
}

func TestForm_SetCoercion(t *testing.T) {
	desc := devices()
	f := NewForm(desc, nil)

	require.NoError(t, f.Set(desc, "capacity", "120"))
	assert.Equal(t, float64(50), f.Values["capacity"], "зажим по max")

	require.NoError(t, f.Set(desc, "capacity", float64(0)))
	assert.Equal(t, float64(1), f.Values["capacity"], "зажим по min")

	err := f.Set(desc, "capacity", "abc")
	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "capacity")
	assert.Nil(t, f.Values["capacity"])

	require.NoError(t, f.Set(desc, "installedAt", "2024-03-05T22:10:00Z"))
	assert.Equal(t, "2024-03-05", f.Values["installedAt"])

	require.NoError(t, f.Set(desc, "tags", []any{"a", "a", "b"}))
	assert.Equal(t, []any{"a", "b"}, f.Values["tags"])

	assert.Error(t, f.Set(desc, "unknown", "x"))
}

func TestRender_DependentDisabledWithoutParent(t *testing.T) {
	desc := devices()
	f := NewForm(desc, nil)

	rendered := RenderForm(desc, f)
	assert.Equal(t, "create", rendered.Mode)
	require.Len(t, rendered.Widgets, len(desc.Fields))

	office := rendered.Widgets[2]
	assert.Equal(t, ControlSelect, office.Control)
	assert.True(t, office.Disabled)
	assert.Empty(t, office.Options)

	tags := rendered.Widgets[6]
	assert.Equal(t, ControlMultiSelect, tags.Control)
	assert.Len(t, tags.Options, 2)
	assert.Equal(t, []any{}, tags.Value)

	assert.Equal(t, ControlDatePicker, rendered.Widgets[5].Control)
	assert.Equal(t, ControlNumber, rendered.Widgets[4].Control)

	require.NoError(t, f.Set(desc, "governorateId", "1"))
	office = Render(desc, f, desc.Fields[2])
	assert.False(t, office.Disabled)
}

func TestResolve_LoadsMissingOptions(t *testing.T) {
	desc := devices()
	f := NewForm(desc, map[string]any{"id": float64(5), "serialNumber": "SN-1", "governorateId": float64(2), "officeId": float64(14)})
	assert.True(t, f.IsEdit())
	assert.Equal(t, "5", f.RecordID)

	loader := &fakeLoader{
		options: map[string][]registry.Option{
			"/governorate":             {{Label: "Basra", Value: "2"}},
			"/office?GovernorateId=2": {{Label: "Zubair", Value: "14"}},
		},
		fail: map[string]error{"/room?OfficeId=14": errors.New("boom")},
	}

	err := Resolve(context.Background(), desc, f, loader)
	assert.Error(t, err)
	assert.ElementsMatch(t, []string{"/governorate", "/office?GovernorateId=2", "/room?OfficeId=14"}, loader.calls)
	assert.Len(t, f.Options["officeId"], 1)
	assert.False(t, f.Pending["roomId"])

	loader.calls = nil
	_ = Resolve(context.Background(), desc, f, loader)
	assert.Equal(t, []string{"/room?OfficeId=14"}, loader.calls, "загруженные варианты не запрашиваются повторно")
}

func TestValidateAndSubmit(t *testing.T) {
	desc := devices()
	v := validation.New()
	f := NewForm(desc, nil)

	_, err := Submit(desc, f, v)
	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "serialNumber")
	assert.Contains(t, vErr.Fields, "governorateId")
	assert.Contains(t, vErr.Fields, "officeId")
	assert.NotContains(t, vErr.Fields, "capacity")

	require.NoError(t, f.Set(desc, "serialNumber", "bad"))
	require.NoError(t, f.Set(desc, "governorateId", "2"))
	f.Options["governorateId"] = []registry.Option{{Label: "Basra", Value: "2"}}
	require.NoError(t, f.Set(desc, "officeId", "99"))
	f.Options["officeId"] = []registry.Option{{Label: "Zubair", Value: "14"}}
	f.OptionsFor["officeId"] = "2"

	err = Validate(desc, f, v)
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "значение не соответствует формату", vErr.Fields["serialNumber"])
	assert.Equal(t, "значение отсутствует в списке", vErr.Fields["officeId"])

	require.NoError(t, f.Set(desc, "serialNumber", "SN-42"))
	require.NoError(t, f.Set(desc, "officeId", "14"))
	require.NoError(t, f.Set(desc, "installedAt", "2024-02-29"))

	payload, err := Submit(desc, f, v)
	require.NoError(t, err)
	assert.Empty(t, f.Errors)
	assert.Equal(t, "SN-42", payload["serialNumber"])
	assert.Equal(t, int64(2), payload["governorateId"])
	assert.Equal(t, int64(14), payload["officeId"])
	assert.Equal(t, "2024-02-29T12:00:00Z", payload["installedAt"])
	_, hasID := payload["id"]
	assert.False(t, hasID)
}

func TestValidate_CoercionErrorWins(t *testing.T) {
	desc := devices()
	f := NewForm(desc, nil)
	_ = f.Set(desc, "installedAt", "31/12/2024")

	err := Validate(desc, f, validation.New())
	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "ожидалась дата в формате ГГГГ-ММ-ДД", vErr.Fields["installedAt"])
}

type stubTransport struct {
	resp *transport.Response
	req  transport.Request
}

func (s *stubTransport) Do(_ context.Context, req transport.Request) (*transport.Response, error) {
	s.req = req
	return s.resp, nil
}

func TestTransportLoader_MapsIDAndName(t *testing.T) {
	st := &stubTransport{resp: &transport.Response{StatusCode: 200, Data: []byte(`[{"id":1,"name":"Baghdad"},{"id":2,"title":"Basra"},{"name":"no id"}]`)}}
	loader := NewTransportLoader(st)

	opts, err := loader.LoadOptions(context.Background(), "devices", "/governorate")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, st.req.Method)
	assert.Equal(t, []registry.Option{{Label: "Baghdad", Value: "1"}, {Label: "Basra", Value: "2"}}, opts)
}
