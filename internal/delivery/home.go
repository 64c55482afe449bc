package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const homePageContent = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Catalog</title>
    <style>
        body { font-family: sans-serif; margin: 2rem; }
        code { background: #f4f4f4; padding: 0 .25rem; }
        li { margin: .25rem 0; }
    </style>
</head>
<body>
    <h1>Catalog</h1>
    <ul>
        <li><a href="/products/">All products</a></li>
        <li><a href="/products/?sort=price&amp;direction=asc">By price</a></li>
        <li><a href="/products/?sort=rating&amp;direction=desc">By rating</a></li>
        <li><a href="/products/?sort=category&amp;direction=asc">By category</a></li>
        <li><a href="/categories/">Categories</a></li>
    </ul>
    <p>Search with <code>/products/?q=shirt</code>, filter with <code>/products/?category=jeans,shirts</code>.</p>
</body>
</html>
`

func ServeHome(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(homePageContent))
}
