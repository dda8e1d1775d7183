package resource

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenvote/tokenvote/lib/tally"
)

func marshalRecords(t *testing.T, list *ResourceList) interface{} {
	encoded, err := json.Marshal(list.Resource())
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &body))
	embedded := body["_embedded"].(map[string]interface{})
	return embedded["records"]
}

// a one-record page must keep the same wire shape as a full page
func TestResourceListRecordsAlwaysArray(t *testing.T) {
	one := []APIResource{NewPayout(1, tally.PayoutLine{ProjectID: "p1", Amount: big.NewInt(10)})}
	records, ok := marshalRecords(t, NewResourceList(one, "/self", "", "")).([]interface{})
	require.True(t, ok)
	require.Len(t, records, 1)

	empty, ok := marshalRecords(t, NewResourceList(nil, "/self", "", "")).([]interface{})
	require.True(t, ok)
	require.Len(t, empty, 0)
}
