package common

import (
	"testing"

	"github.com/SUSean/2015osteam20MP4/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestGetData1(t *testing.T) {
	data := SP.GetData(100)
	defer SP.PutData(data)

	assert.Equal(t, 100, len(data))
	assert.Equal(t, types.SectorSize, cap(data))
}

func TestGetData2(t *testing.T) {
	testSize := 5*types.SectorSize + 1
	data := SP.GetData(testSize)
	defer SP.PutData(data)

	assert.Equal(t, testSize, len(data))
	assert.Equal(t, 6*types.SectorSize, cap(data))
}
